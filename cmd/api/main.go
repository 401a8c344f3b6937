package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/auth"
	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/logging"
	"github.com/PrassV/Propo-Staging-sub004/internal/ratelimit"
	"github.com/PrassV/Propo-Staging-sub004/internal/scheduler"
	"github.com/PrassV/Propo-Staging-sub004/internal/search"
	"github.com/PrassV/Propo-Staging-sub004/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	appConfig *config.Config
	logger    *zap.SugaredLogger
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	}

	logger, err = logging.NewLogger(
		getEnvOrConfig(appConfig.Logging.Level, "LOG_LEVEL", "info"),
		appConfig.Logging.Development,
	)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Infow("Loaded configuration", "path", configPath)

	if !appConfig.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := dependencies{
		cfg:      appConfig,
		logger:   logger,
		verifier: auth.NewJWTVerifier(getEnvOrConfig(appConfig.Auth.JWTSecret, "JWT_SECRET", "")),
	}
	if deps.verifier == nil {
		logger.Warnw("JWT secret not set; access tokens are not verified")
	}

	// Initialize database based on configuration
	closeDB, err := openDatabase(&deps)
	if err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer closeDB()

	// Object storage for property images
	storageCfg := appConfig.Storage
	objects, err := storage.NewS3Store(context.Background(), storage.Options{
		Region:          getEnvOrConfig(storageCfg.Region, "STORAGE_REGION", "us-east-1"),
		Bucket:          getEnvOrConfig(storageCfg.Bucket, "STORAGE_BUCKET", "propertyimage"),
		Endpoint:        getEnvOrConfig(storageCfg.Endpoint, "STORAGE_ENDPOINT", ""),
		AccessKeyID:     getEnvOrConfig(storageCfg.AccessKeyID, "STORAGE_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnvOrConfig(storageCfg.SecretAccessKey, "STORAGE_SECRET_ACCESS_KEY", ""),
		PublicBaseURL:   getEnvOrConfig(storageCfg.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL", ""),
		UsePathStyle:    storageCfg.UsePathStyle,
	})
	if err != nil {
		logger.Fatalw("Failed to initialize storage", "error", err)
	}
	deps.objects = objects
	logger.Infow("Storage initialized", "bucket", objects.Bucket())

	// Initialize Meilisearch using config
	if appConfig.Search.Enabled {
		searchCfg := appConfig.Search
		searchCfg.Meilisearch.Host = getEnvOrConfig(searchCfg.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
		searchCfg.Meilisearch.APIKey = getEnvOrConfig(searchCfg.Meilisearch.APIKey, "MEILISEARCH_KEY", "")

		searchClient := search.NewSearchClient(searchCfg, logger)
		if err := searchClient.InitIndex(); err != nil {
			logger.Warnw("Failed to initialize search index", "error", err)
		}
		deps.search = searchClient

		// Nightly reindex
		deps.scheduler = scheduler.NewScheduler(appConfig.Scheduler, deps.store, searchClient, logger)
		if err := deps.scheduler.Start(); err != nil {
			logger.Warnw("Failed to start scheduler", "error", err)
		}
		defer deps.scheduler.Stop()
	}

	// Initialize rate limiter
	rl := appConfig.RateLimit
	deps.limiter = ratelimit.NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.RequestsPerDay, rl.Enabled).
		WithClientLimit(rl.ClientRequestsPerMinute, rl.ClientBurst)
	logger.Infow("Rate limiter initialized",
		"per_minute", rl.RequestsPerMinute, "per_hour", rl.RequestsPerHour, "per_day", rl.RequestsPerDay,
		"client_per_minute", rl.ClientRequestsPerMinute, "enabled", rl.Enabled)

	router, err := newRouter(deps)
	if err != nil {
		logger.Fatalw("Failed to build router", "error", err)
	}

	port := getEnv("PORT", appConfig.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("Server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Infow("Shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("Server shutdown failed", "error", err)
	}
	logger.Infow("Shutdown completed")
}

// openDatabase connects the configured backend and stores it in deps
func openDatabase(deps *dependencies) (func(), error) {
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "postgres")
	}

	switch dbType {
	case "mysql":
		logger.Infow("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL
		gormDB, err := database.NewMySQLGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portString(mysqlCfg.Port), "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "propo"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", ""),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "propo"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return useGorm(deps, gormDB)

	case "gorm-postgres":
		logger.Infow("Using PostgreSQL with GORM")
		pgCfg := appConfig.Database.Postgres
		gormDB, err := database.NewPostgresGormDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(pgCfg.Port), "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "postgres"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", ""),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "postgres"),
			getEnvOrConfig(pgCfg.SSLMode, "DB_SSLMODE", "require"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return useGorm(deps, gormDB)

	case "postgres":
		logger.Infow("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres
		db, err := database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(pgCfg.Port), "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "postgres"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", ""),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "postgres"),
			getEnvOrConfig(pgCfg.SSLMode, "DB_SSLMODE", "require"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.InitSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		deps.store = db
		return func() { db.Close() }, nil

	default:
		return nil, fmt.Errorf("unknown database type %q", dbType)
	}
}

func useGorm(deps *dependencies, gormDB *database.GormDB) (func(), error) {
	// Initialize schema with GORM AutoMigrate
	if err := gormDB.InitSchema(); err != nil {
		gormDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	deps.store = gormDB
	deps.gorm = gormDB.DB()
	return func() { gormDB.Close() }, nil
}

// portString returns "" for an unset port so env/defaults apply
func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
