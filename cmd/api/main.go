package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/udata-api/internal/config"
	"github.com/noah-isme/udata-api/internal/database"
	"github.com/noah-isme/udata-api/internal/events"
	"github.com/noah-isme/udata-api/internal/handler"
	"github.com/noah-isme/udata-api/internal/middleware"
	"github.com/noah-isme/udata-api/internal/observability"
	"github.com/noah-isme/udata-api/internal/repository"
	"github.com/noah-isme/udata-api/internal/router"
	"github.com/noah-isme/udata-api/internal/security"
	"github.com/noah-isme/udata-api/internal/service"
	"github.com/noah-isme/udata-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)
	if cfg.EphemeralJWTSecret {
		logger.Warn().Msg("jwt secret not configured; using a random key for this process")
	}

	db, err := database.Connect(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	tokens, err := security.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL, security.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token issuer")
	}
	hasher := security.NewPasswordHasher(security.DefaultArgon2Params)
	validate := utils.NewValidator()

	observability.RegisterMetrics()

	userRepo := repository.NewUserRepository(db)
	campusRepo := repository.NewCampusRepository(db)
	buildingRepo := repository.NewBuildingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, publisher, logger)
	authService := service.NewAuthService(userRepo, hasher, tokens, validate, logger)
	gate := service.NewAuthGate(tokens, userRepo, logger)
	campusService := service.NewCampusService(campusRepo, buildingRepo, roomRepo, activityService, validate, logger)
	buildingService := service.NewBuildingService(campusRepo, buildingRepo, roomRepo, activityService, validate, logger)
	roomService := service.NewRoomService(buildingRepo, roomRepo, activityService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.IsDevelopment(),
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     handler.NewAuthHandler(authService, logger),
		CampusHandler:   handler.NewCampusHandler(campusService, logger),
		BuildingHandler: handler.NewBuildingHandler(buildingService, logger),
		RoomHandler:     handler.NewRoomHandler(roomService, logger),
		ActivityHandler: handler.NewActivityHandler(activityService, logger),
		Gate:            gate,
		HealthPing:      pingDatabase(db),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, db, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

// newPublisher connects to NATS when a URL is configured. Events are dropped otherwise.
func newPublisher(cfg config.Config, logger zerolog.Logger) (events.Publisher, func()) {
	if cfg.NATSURL == "" {
		logger.Info().Msg("nats url not configured; directory events disabled")
		return events.Nop{}, func() {}
	}

	nc, err := events.Connect(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to nats; directory events disabled")
		return events.Nop{}, func() {}
	}

	return events.NewNATSPublisher(nc, cfg.NATSSubjectPrefix, logger), func() {
		if err := nc.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
}

func pingDatabase(db *gorm.DB) handler.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func waitForShutdown(app *fiber.App, db *gorm.DB, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info().Msg("server stopped")
}
