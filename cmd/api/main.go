package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/auth"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/notify"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/requisition"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/usecase"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/cache"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/events"
	infrapdf "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/pdf"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/interfaces/http"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/config"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.Repos(pool)
	userRepo := postgres.NewUserRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)

	// Directorio de custodios detrás de la caché (Redis o memoria)
	dirCache := cache.NewDirectoryCache(
		postgres.NewDirectory(pool),
		cache.New(cfg.Redis, log),
		time.Duration(cfg.Redis.TTLSeconds)*time.Second,
		log,
	)

	// Eventos: Kafka si hay brokers, si no el log
	var sink ports.EventSink
	if cfg.Kafka.Enabled() {
		kafkaSink, err := events.NewKafkaSink(cfg.Kafka, log)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("productor kafka")
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	} else {
		sink = events.NewLogSink(log)
	}
	dispatcher := notify.NewDispatcher(sink, log)

	receipts, err := infrapdf.NewReceiptGenerator(cfg.Storage.ArtifactDir, cfg.Inventory.Organization)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.ArtifactDir).Msg("directorio de comprobantes")
	}
	labels := infrapdf.NewLabelGenerator(cfg.Storage.LabelBaseURL, cfg.Inventory.Organization)

	clock := ports.SystemClock
	ledger := inventory.NewLedgerUseCase(txRunner, clock, dispatcher)
	replenishment := inventory.NewReplenishmentUseCase(repos.Items, repos.Usage, repos.Movements, clock, cfg.Inventory.LowStockThreshold)
	requisitionUC := requisition.NewUseCase(txRunner, ledger, repos.Requisitions, dirCache, receipts, dispatcher, clock, log)
	custodyUC := custody.NewUseCase(txRunner, repos.Items, repos.Receipts, dirCache, dispatcher, clock, log)
	itemUC := usecase.NewItemUseCase(txRunner, repos.Items, labels, clock)

	userUC := usecase.NewUserUseCase(userRepo)
	userUC.SetInvalidator(dirCache)
	locationUC := usecase.NewLocationUseCase(locationRepo, userRepo)
	locationUC.SetInvalidator(dirCache)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "IRIGTRACK API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        userUC,
		LocationUC:    locationUC,
		ItemUC:        itemUC,
		Ledger:        ledger,
		Replenishment: replenishment,
		Requisitions:  requisitionUC,
		Custody:       custodyUC,
		JWTSecret:     cfg.JWT.Secret,
		Log:           log,
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

	log.Info().Msg("aplicación detenida")
}
