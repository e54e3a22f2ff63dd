package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"orderflow/cmd"
	redisadapter "orderflow/internal/adapters/out/redis"
	"orderflow/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	appLogger, err := logger.New(configs.App.Env, configs.App.LogLevel)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	gormDB, err := openDatabase(configs.DB)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	redisClient, err := redisadapter.NewClient(ctx, redisadapter.Config{
		URL:          configs.Redis.URL,
		Address:      configs.Redis.Address,
		Password:     configs.Redis.Password,
		DB:           configs.Redis.DB,
		PoolSize:     configs.Redis.PoolSize,
		DialTimeout:  configs.Redis.DialTimeout,
		ReadTimeout:  configs.Redis.ReadTimeout,
		WriteTimeout: configs.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Error connecting to redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	app, err := cmd.NewCompositionRoot(configs, gormDB, redisClient, appLogger)
	if err != nil {
		log.Fatalf("Error wiring application: %v", err)
	}

	if configs.Jobs.Enabled {
		jobManager, jobErr := app.CreateJobManager()
		if jobErr != nil {
			log.Fatalf("Error creating jobs: %v", jobErr)
		}
		if jobErr = jobManager.StartAll(); jobErr != nil {
			log.Fatalf("Error starting jobs: %v", jobErr)
		}
		defer jobManager.StopAll()
	}

	startWebServer(ctx, app, configs, appLogger)
}

func openDatabase(cfg cmd.DBConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return gormDB, nil
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, appLogger *zap.Logger) {
	e, err := app.CreateRouter(ctx)
	if err != nil {
		log.Fatalf("Error creating router: %v", err)
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", configs.HTTP.Port))
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTP.Port)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			e.Logger.Fatal(startErr)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.HTTP.ShutdownWait)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
