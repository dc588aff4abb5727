package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/config"
	"github.com/noah-isme/mock-interview-api/internal/database"
	"github.com/noah-isme/mock-interview-api/internal/handler"
	"github.com/noah-isme/mock-interview-api/internal/middleware"
	"github.com/noah-isme/mock-interview-api/internal/repository"
	"github.com/noah-isme/mock-interview-api/internal/router"
	"github.com/noah-isme/mock-interview-api/internal/service"
	"github.com/noah-isme/mock-interview-api/pkg/ai"
	cloud "github.com/noah-isme/mock-interview-api/pkg/cloudinary"
	"github.com/noah-isme/mock-interview-api/pkg/events"
	"github.com/noah-isme/mock-interview-api/pkg/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	interviewRepo := repository.NewInterviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	resumeRepo := repository.NewResumeRepository(db)

	healed, err := interviewRepo.NormalizeCompletion(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to normalize interview completion flags")
	}
	if healed > 0 {
		logger.Info().Int64("rows", healed).Msg("normalized legacy completed interviews")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logger.Info().Msg("redis not configured, interview history cache disabled")
	} else {
		defer redisClient.Close()
	}

	natsConn, err := events.Connect(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	var publisher events.Publisher = events.NopPublisher{}
	if natsConn != nil {
		defer natsConn.Drain()
		publisher = events.NewNATSPublisher(natsConn, cfg.NATSSubject)
	}

	fileStorage, staticRoot, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure resume storage")
	}

	aiClient, err := ai.NewFromConfig(ctx, ai.Config{
		Provider:         cfg.AIProvider,
		Timeout:          cfg.AITimeout,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIModel:      cfg.OpenAIModel,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiModel:      cfg.GeminiModel,
		OpenRouterAPIKey: cfg.OpenRouterAPIKey,
		OpenRouterModel:  cfg.OpenRouterModel,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure ai provider")
	}

	options := service.InterviewOptions{
		Cache:    redisClient,
		CacheTTL: cfg.HistoryCacheTTL,
		Events:   publisher,
	}
	if aiClient != nil {
		options.Evaluator = aiClient
		options.Generator = aiClient
		logger.Info().Str("provider", aiClient.Provider()).Msg("ai provider configured")
	} else {
		logger.Warn().Msg("ai provider disabled, evaluate and generate endpoints will fail")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(userRepo, validate, service.AuthConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
	}, logger)
	interviewService := service.NewInterviewService(interviewRepo, userRepo, validate, options, logger)
	resumeService := service.NewResumeService(fileStorage, resumeRepo, validate, cfg.UploadMaxMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})

	if staticRoot != "" {
		app.Static("/uploads", staticRoot)
	}

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, cfg.CookieSecure, logger),
		InterviewHandler: handler.NewInterviewHandler(interviewService, logger),
		ResumeHandler:    handler.NewResumeHandler(resumeService, logger),
		HealthChecks:     healthChecks(db, redisClient, natsConn),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func buildStorage(cfg config.Config, logger zerolog.Logger) (service.FileStorage, string, error) {
	if cfg.CloudinaryEnabled() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		logger.Info().Msg("resume storage: cloudinary")
		return uploader, "", nil
	}

	local, err := storage.NewLocal(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, "", err
	}
	logger.Info().Str("dir", local.Root()).Msg("resume storage: local disk")
	return local, local.Root(), nil
}

func healthChecks(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	if natsConn != nil {
		checks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}

	return checks
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
