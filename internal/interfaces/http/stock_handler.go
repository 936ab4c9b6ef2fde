package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/pkg/validator"
)

// StockHandler maneja artículos de bodega o de inventario según el caso de uso que reciba.
type StockHandler struct {
	uc       *usecase.StockUseCase
	notFound string
	log      zerolog.Logger
}

// NewWarehouseItemHandler handler de /api/warehouse-items.
func NewWarehouseItemHandler(uc *usecase.StockUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{uc: uc, notFound: "artículo de bodega no encontrado", log: log}
}

// NewInventoryItemHandler handler de /api/inventory-items.
func NewInventoryItemHandler(uc *usecase.StockUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{uc: uc, notFound: "artículo de inventario no encontrado", log: log}
}

// Create godoc
// @Summary      Crear artículo (bodega o inventario)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRecordRequest  true  "Datos del artículo"
// @Success      201   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/warehouse-items [post]
// @Router       /api/inventory-items [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return respondValidation(c, CodeValidation, errs)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouse-items/{id} [get]
// @Router       /api/inventory-items/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: h.notFound})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar artículos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.StockRecordListResponse
// @Router       /api/warehouse-items [get]
// @Router       /api/inventory-items [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "parámetros inválidos"})
	}
	if errs := validator.ValidateStruct(page); errs != nil {
		return respondValidation(c, CodeValidation, errs)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
