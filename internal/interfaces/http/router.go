package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/ws"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ExecuteTransfer *transfer.ExecuteTransferUseCase
	TransferQueryUC *usecase.TransferQueryUseCase
	WarehouseItemUC *usecase.StockUseCase
	InventoryItemUC *usecase.StockUseCase
	AuditUC         *usecase.AuditUseCase
	AuthUC          *auth.AuthUseCase
	UserUC          *usecase.UserUseCase
	Hub             *ws.Hub // nil = sin /ws
	JWTSecret       string
	SecureCookie    bool
	Log             zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.SecureCookie, deps.Log)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), NewUserHandler(deps.UserUC, deps.Log).Me)

	// Rutas protegidas (Bearer Token o cookie de sesión)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	canWrite := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Artículos de bodega
	warehouseItems := protected.Group("/warehouse-items")
	warehouseHandler := NewWarehouseItemHandler(deps.WarehouseItemUC, deps.Log)
	warehouseItems.Get("/", warehouseHandler.List)
	warehouseItems.Post("/", canWrite, warehouseHandler.Create)
	warehouseItems.Get("/:id", warehouseHandler.GetByID)

	// Artículos de inventario
	inventoryItems := protected.Group("/inventory-items")
	inventoryHandler := NewInventoryItemHandler(deps.InventoryItemUC, deps.Log)
	inventoryItems.Get("/", inventoryHandler.List)
	inventoryItems.Post("/", canWrite, inventoryHandler.Create)
	inventoryItems.Get("/:id", inventoryHandler.GetByID)

	// Traslados
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.ExecuteTransfer, deps.TransferQueryUC, deps.Log)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)

	// Alta de usuarios con rol (solo admin)
	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.CreateUser)

	// Auditoría (solo admin)
	auditHandler := NewAuditHandler(deps.AuditUC, deps.Log)
	protected.Get("/audit-logs", RequireRole(entity.RoleAdmin), auditHandler.List)

	if deps.Hub != nil {
		app.Use("/ws", AuthMiddleware(deps.JWTSecret), RequireUpgrade())
		app.Get("/ws", StockUpdatesSocket(deps.Hub))
	}
}
