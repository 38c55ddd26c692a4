package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/stepbookstep/server/internal/cache"
	"github.com/stepbookstep/server/internal/config"
	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/repository"
	"github.com/stepbookstep/server/internal/service"
	"github.com/stepbookstep/server/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Redis             *redis.Client
	AuthService       *service.AuthService
	CatalogService    *service.CatalogService
	GoalService       *service.GoalService
	ReadingLogService *service.ReadingLogService
	StatisticsService *service.StatisticsService
	ExportService     *service.ExportService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	if cfg.MigrateOnStart {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	// Catalog cache is optional
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to initialize redis: %v", err)
		}
	} else {
		slog.Info("catalog cache disabled")
	}

	// Export archive storage is optional
	var store storage.Storage
	if cfg.StorageEnabled() {
		store, err = storage.New(ctx, cfg)
		if err != nil {
			database.Close()
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, fmt.Errorf("failed to initialize storage: %v", err)
		}
	} else {
		slog.Info("export archive disabled")
	}

	return Build(cfg, database, redisClient, store), nil
}

// Build wires repositories and services on top of already opened resources.
// redisClient and store may be nil.
func Build(cfg *config.Config, database *sqlx.DB, redisClient *redis.Client, store storage.Storage) *App {
	// Repositories
	bookRepository := repository.NewBookRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	readingLogRepository := repository.NewReadingLogRepository(database)
	userBookRepository := repository.NewUserBookRepository(database)

	var bookCache *cache.BookCache
	if redisClient != nil {
		bookCache = cache.NewBookCache(redisClient, cfg.CatalogCacheTTL)
	}

	// Services
	clock := service.NewClock(cfg.Location())
	locks := service.NewPairLocks()
	catalogService := service.NewCatalogService(bookRepository, bookCache)
	goalService := service.NewGoalService(
		database,
		goalRepository,
		readingLogRepository,
		userBookRepository,
		catalogService,
		locks,
		clock,
	)
	readingLogService := service.NewReadingLogService(
		database,
		goalRepository,
		readingLogRepository,
		userBookRepository,
		catalogService,
		locks,
		clock,
	)
	statisticsService := service.NewStatisticsService(
		goalRepository,
		readingLogRepository,
		userBookRepository,
		catalogService,
		clock,
	)
	exportService := service.NewExportService(goalRepository, readingLogRepository, statisticsService, store, clock)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Redis:             redisClient,
		AuthService:       authService,
		CatalogService:    catalogService,
		GoalService:       goalService,
		ReadingLogService: readingLogService,
		StatisticsService: statisticsService,
		ExportService:     exportService,
	}
}

func (a *App) Close() error {
	if a.Redis != nil {
		err := a.Redis.Close()
		if err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
