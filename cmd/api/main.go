package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-restaurante-api/internal/application/auth"
	"github.com/jhoicas/pos-restaurante-api/internal/application/cash"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dgii"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dish"
	"github.com/jhoicas/pos-restaurante-api/internal/application/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/application/inventory"
	"github.com/jhoicas/pos-restaurante-api/internal/application/invoice"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/application/table"
	"github.com/jhoicas/pos-restaurante-api/internal/application/tenant"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	fiscaldoc "github.com/jhoicas/pos-restaurante-api/internal/domain/fiscal"
	infrapdf "github.com/jhoicas/pos-restaurante-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/realtime"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/pos-restaurante-api/internal/interfaces/http"
	"github.com/jhoicas/pos-restaurante-api/pkg/config"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// montos como números en el JSON
	decimal.MarshalJSONWithoutQuotes = true

	defaults, err := billingDefaults(cfg.Billing)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de cobro inválida")
	}
	loc := cfg.App.Location()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	seqRepo := postgres.NewFiscalSequenceRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	tableRepo := postgres.NewTableRepository(pool)
	dishRepo := postgres.NewDishRepository(pool)
	itemRepo := postgres.NewInventoryItemRepository(pool)
	movRepo := postgres.NewInventoryMovementRepository(pool)
	cashRepo := postgres.NewCashSessionRepository(pool)
	rncRepo := postgres.NewRncRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Tiempo real: hub local; con Redis, difusión entre instancias.
	hub := realtime.NewHub(0, cfg.Realtime.MaxClients, log)
	var notifier order.Notifier = hub
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		broadcaster := realtime.NewRedisBroadcaster(rdb, cfg.Redis.Channel, hub, log)
		notifier = broadcaster
		go func() {
			if err := broadcaster.Run(ctx); err != nil {
				log.Error().Err(err).Msg("suscripción de eventos finalizada")
			}
		}()
	}

	// Facturas PDF: solo con bucket configurado.
	var invoices order.InvoiceGenerator
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento S3")
		}
		invoices = invoice.NewService(orderRepo, tenantRepo, infrapdf.NewMarotoPDFGenerator(loc), s3, defaults.TaxRate, log)
	} else {
		log.Warn().Msg("S3_BUCKET vacío: generación de facturas deshabilitada")
	}

	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	reconciler := inventory.NewReconciler(txRunner, dishRepo, log)
	orderUC := order.NewUseCase(
		txRunner, orderRepo, tenantRepo, tableRepo,
		fiscal.NewAllocator(seqRepo, log), reconciler, invoices, notifier,
		defaults, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
		// sin WriteTimeout: el stream SSE queda abierto
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Restaurante API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:         orderUC,
		TableUC:         table.NewUseCase(tableRepo, tenantRepo, orderRepo, txRunner, notifier, log),
		DishUC:          dish.NewUseCase(dishRepo, tenantRepo, log),
		ItemUC:          inventory.NewItemUseCase(itemRepo, movRepo, loc),
		MovementUC:      inventory.NewRegisterMovementUseCase(txRunner),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(itemRepo),
		CashUC:          cash.NewUseCase(cashRepo, txRunner, loc, log),
		TenantUC:        tenant.NewUseCase(tenantRepo, seqRepo, txRunner, authUC, defaults, log),
		AuthUC:          authUC,
		DgiiUC:          dgii.NewUseCase(rncRepo),
		Hub:             hub,
		Tenants:         tenantRepo,
		Heartbeat:       time.Duration(cfg.Realtime.HeartbeatSeconds) * time.Second,
		JWTSecret:       cfg.JWT.Secret,
		ServiceName:     cfg.App.Name,
		Ping:            pool.Ping,
		Log:             log,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func billingDefaults(c config.BillingConfig) (billing.Defaults, error) {
	tax, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return billing.Defaults{}, err
	}
	py, err := decimal.NewFromString(c.PedidosYaRate)
	if err != nil {
		return billing.Defaults{}, err
	}
	ue, err := decimal.NewFromString(c.UberEatsRate)
	if err != nil {
		return billing.Defaults{}, err
	}
	return billing.Defaults{
		TaxRate:       tax,
		PedidosYaRate: py,
		UberEatsRate:  ue,
		PaymentMethod: c.DefaultPayment,
		EmissionPoint: c.DefaultEmission,
		BranchName:    c.DefaultBranchName,
		FiscalDocType: fiscaldoc.DocTypeConsumidorFinal,
	}, nil
}
