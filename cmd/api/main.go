package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/audit"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/cache"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/messaging"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/migration"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/notify"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/Bodega-api/internal/interfaces/http"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.AutoMigrate {
		runMigrations(cfg, log)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	warehouseRepo := postgres.NewWarehouseItemRepository(pool)
	inventoryRepo := postgres.NewInventoryItemRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	transferMetrics := metrics.NewTransferMetrics()

	// Auditoría asíncrona: un fallo nunca revierte el traslado, solo se registra y se cuenta.
	auditDispatcher := audit.NewDispatcher(auditRepo, audit.Config{
		BufferSize:   cfg.Transfer.AuditBufferSize,
		Workers:      cfg.Transfer.AuditWorkers,
		WriteTimeout: 5 * time.Second,
	}, zl, func(*entity.AuditLog, error) { transferMetrics.AuditFailed() })

	healthChecks := map[string]httpRouter.HealthCheck{"postgres": pool.Ping}
	var idempotency transfer.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr()).Msg("conexión a Redis")
		}
		defer redisStore.Close()
		idempotency = redisStore
		healthChecks["redis"] = redisStore.Ping
	} else {
		memStore := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer memStore.Close()
		idempotency = memStore
		log.Warn().Msg("REDIS_HOST vacío: idempotencia en memoria (solo una instancia)")
	}

	hub := ws.NewHub(64, zl)
	go hub.Run()
	notifiers := notify.Multi{ws.NewNotifier(hub)}

	var kafkaPublisher *messaging.KafkaPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka), messaging.PublisherConfig{
			BufferSize:   cfg.Transfer.AuditBufferSize,
			WriteTimeout: 5 * time.Second,
		}, zl)
		notifiers = append(notifiers, kafkaPublisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de traslados en Kafka")
	}

	executeTransferUC := transfer.NewExecuteTransferUseCase(txRunner, transferRepo, auditDispatcher, transfer.Config{
		RequireSameProduct: cfg.Transfer.RequireSameProduct,
		TxTimeout:          cfg.Transfer.TxTimeout,
		IdempotencyTTL:     cfg.Transfer.IdempotencyTTL,
	}, zl,
		transfer.WithIdempotencyStore(idempotency),
		transfer.WithNotifier(notifiers),
		transfer.WithMetrics(transferMetrics),
	)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Admin.Enabled() {
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(log.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bodega API",
	}))

	app.Get("/health", httpRouter.Health(cfg.App.Name, healthChecks))
	app.Get("/metrics", adaptor.HTTPHandler(transferMetrics.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ExecuteTransfer: executeTransferUC,
		TransferQueryUC: usecase.NewTransferQueryUseCase(transferRepo),
		WarehouseItemUC: usecase.NewWarehouseItemUseCase(warehouseRepo, auditDispatcher, zl),
		InventoryItemUC: usecase.NewInventoryItemUseCase(inventoryRepo, auditDispatcher, zl),
		AuditUC:         usecase.NewAuditUseCase(auditRepo),
		AuthUC:          authUC,
		UserUC:          usecase.NewUserUseCase(userRepo),
		Hub:             hub,
		JWTSecret:       cfg.JWT.Secret,
		SecureCookie:    cfg.App.Env == "production",
		Log:             zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Primero se vacía la cola de auditoría: después ya no llegan traslados nuevos.
	if err := auditDispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar cola de auditoría")
	}
	hub.Stop()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("cerrar productor Kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}

func runMigrations(cfg *config.Config, log *logger.Logger) {
	m, err := migration.New(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
}
