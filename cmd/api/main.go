package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/config"
	"github.com/noah-isme/schedmate-api/internal/database"
	"github.com/noah-isme/schedmate-api/internal/handler"
	"github.com/noah-isme/schedmate-api/internal/middleware"
	"github.com/noah-isme/schedmate-api/internal/repository"
	"github.com/noah-isme/schedmate-api/internal/router"
	"github.com/noah-isme/schedmate-api/internal/service"
	cloud "github.com/noah-isme/schedmate-api/pkg/cloudinary"
	"github.com/noah-isme/schedmate-api/pkg/gcs"
	"github.com/noah-isme/schedmate-api/pkg/priority"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Verbose:         cfg.IsDevelopment() && level <= zerolog.DebugLevel,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	storage, closeStorage, err := newFileStorage(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create blob store: %v", err)
	}
	defer closeStorage()

	scorer, err := newPriorityScorer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create priority scorer: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	uploadService := service.NewUploadService(storage, uploadRepo, cfg.UploadMaxSizeMB, logger)
	leaderboardService := service.NewLeaderboardService(progressRepo, redisClient, cfg.LeaderboardCacheTTL, logger)
	authService := service.NewAuthService(userRepo, validate, service.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTokenTTL}, logger)
	profileService := service.NewProfileService(userRepo, uploadService, validate, logger)
	enrollmentService := service.NewEnrollmentService(classRepo, activityService, validate, service.EnrollmentPolicy{StrictStudentCode: cfg.StrictStudentCode}, logger)
	taskService := service.NewTaskService(taskRepo, classRepo, scorer, leaderboardService, activityService, validate, logger)
	progressService := service.NewProgressService(taskRepo, progressRepo, uploadService, leaderboardService, activityService, validate, logger)
	visibilityService := service.NewVisibilityService(taskRepo, classRepo, progressRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		Development:  cfg.IsDevelopment(),
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		ProfileHandler:     handler.NewProfileHandler(profileService, logger),
		ClassHandler:       handler.NewClassHandler(enrollmentService, logger),
		TaskHandler:        handler.NewTaskHandler(taskService, visibilityService, logger),
		ProgressHandler:    handler.NewProgressHandler(progressService, logger),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		UploadHandler:      handler.NewUploadHandler(uploadService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		HealthProbes: []handler.Probe{
			{Name: "database", Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("storage", cfg.StorageProvider).Str("priority", cfg.PriorityProvider).Msg("server started")

	waitForShutdown(app)
}

func newFileStorage(cfg config.Config, logger zerolog.Logger) (service.FileStorage, func(), error) {
	switch cfg.StorageProvider {
	case config.StorageGCS:
		store, err := gcs.New(context.Background(), gcs.Config{
			Bucket:          cfg.GCSBucket,
			Prefix:          cfg.GCSPrefix,
			CredentialsFile: cfg.GCSCredentialsFile,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close gcs client")
			}
		}, nil
	default:
		store, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func newPriorityScorer(cfg config.Config, logger zerolog.Logger) (priority.Scorer, error) {
	switch cfg.PriorityProvider {
	case config.PriorityFormula:
		return priority.NewFormulaScorer(), nil
	case config.PriorityOpenAI:
		scorer, err := priority.NewOpenAIScorer(priority.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		return scorer, nil
	default:
		scorer, err := priority.NewHTTPScorer(priority.HTTPConfig{
			BaseURL: cfg.PriorityServiceURL,
			Timeout: cfg.PriorityTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return scorer, nil
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
