package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stoutlog/logbook-service/internal/app/logbook/config"
	"stoutlog/logbook-service/internal/app/logbook/handler"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure/cache"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure/messaging"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure/storage"
	"stoutlog/logbook-service/internal/app/logbook/processor"
	"stoutlog/logbook-service/internal/app/logbook/repository"
	"stoutlog/logbook-service/internal/app/logbook/service"
	"stoutlog/pkg/logger"
)

const serviceName = "logbook-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.IsDev() {
		logger.InitConsole(serviceName, cfg.Log.Level)
	} else {
		logger.Init(serviceName, cfg.Log.Level)
	}

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reviewRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open review store")
	}
	defer closeStore()
	logger.Info().Str("backend", cfg.Store.Backend).Msg("Review store ready")

	imageStore, err := openImageStore(ctx, cfg.Images)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Images.Backend).Msg("Failed to open image store")
	}
	if closer, ok := imageStore.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var reviewCache infrastructure.ReviewCache = infrastructure.NoopCache{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisReviewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			// без кеша сервис работает, просто медленнее
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, reviews cache disabled")
		} else {
			reviewCache = redisCache
			logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("Connected to Redis")
		}
	}
	defer reviewCache.Close()

	var publisher infrastructure.MessagePublisher = infrastructure.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Initialized Kafka producer")
	}
	defer publisher.Close()

	reviewService := service.NewReviewService(reviewRepo, reviewCache, publisher, imageStore)

	// файл могут править руками - кеш списка должен это заметить
	if cfg.Store.Backend == config.StoreFile && cfg.Redis.Addr != "" {
		if err := repository.WatchFile(ctx, cfg.Store.DataFile, func() {
			reviewService.InvalidateCache(ctx)
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to watch data file")
		}
	}

	if cfg.Sweeper.Enabled() {
		sweeper := service.NewUploadSweeper(reviewRepo, imageStore, cfg.Sweeper.Grace)
		scheduler := processor.NewCronScheduler(sweeper)
		if err := scheduler.Start(ctx, cfg.Sweeper.Schedule); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Sweeper.Schedule).Msg("Failed to start upload sweeper")
		}
		defer scheduler.Stop()
	}

	reviewHandler := handler.NewReviewHandler(reviewService)
	router := handler.SetupRoutes(reviewHandler, handler.RouterConfig{
		PublicDir:      cfg.Server.PublicDir,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Images.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Logbook Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Logbook Service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Logbook Service stopped gracefully")
}

// openStore выбирает хранилище отзывов по STORE_BACKEND
func openStore(ctx context.Context, cfg *config.Config) (repository.ReviewRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		client, err := connectMongoDB(cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		}
		logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")
		return repository.NewMongoReviewRepository(client.Database(cfg.MongoDB.Database)), closeFn, nil

	case config.StorePostgres:
		db, err := connectPostgres(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.AutoMigrate(db); err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		logger.Info().Msg("Connected to PostgreSQL")
		return repository.NewPostgresReviewRepository(db), closeFn, nil

	default:
		repo := repository.NewFileReviewRepository(cfg.Store.DataFile)
		// List создает пустой файл, если его нет
		if _, err := repo.List(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.Store.DataFile).Msg("Using JSON file store")
		return repo, func() {}, nil
	}
}

func openImageStore(ctx context.Context, cfg config.ImageConfig) (infrastructure.ImageStore, error) {
	if cfg.Backend == config.ImageGCS {
		store, err := storage.NewGCSImageStore(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("bucket", cfg.GCSBucket).Msg("Using GCS image store")
		return store, nil
	}

	logger.Info().Str("dir", cfg.UploadDir).Msg("Using disk image store")
	return storage.NewDiskImageStore(cfg.UploadDir), nil
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		client, err = func() (*mongo.Client, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			c, err := mongo.Connect(ctx, clientOptions)
			if err != nil {
				return nil, err
			}
			if err := c.Ping(ctx, nil); err != nil {
				c.Disconnect(context.Background())
				return nil, err
			}
			return c, nil
		}()
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after 10 attempts: %w", err)
}

// connectPostgres открывает GORM соединение с повторными попытками для запуска в Docker
func connectPostgres(cfg config.PostgresConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to PostgreSQL, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL after 10 attempts: %w", err)
}
