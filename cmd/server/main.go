// Package main is the entry point for the lead-funnel HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/handler"
	"github.com/insurang/lead-funnel/internal/logging"
	"github.com/insurang/lead-funnel/internal/middleware"
	"github.com/insurang/lead-funnel/internal/repository"
	"github.com/insurang/lead-funnel/internal/service"
)

func main() {
	// Missing .env is fine; config falls back to yaml values and defaults.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("Failed to connect to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
	}

	repo, err := repository.New(db, cfg.Database.Driver)
	if err != nil {
		logger.Fatal("Failed to create repository", zap.Error(err))
	}

	// Warn and error entries are also persisted to the error_logs table.
	auditLogger := logging.NewAuditLogger(logger, repo.ErrorLogs())

	svc := service.NewService(cfg, repo, redisClient, auditLogger)

	if cfg.Admin.Password == "" {
		logger.Warn("Admin password not configured, admin endpoints are open (development mode)")
	}

	router := setupRouter(handler.NewHandler(svc, auditLogger), cfg)

	middlewareConfig := &middleware.Config{
		Logger:         auditLogger,
		RateLimit:      rate.Limit(cfg.Middleware.RateLimit),
		RateLimitBurst: cfg.Middleware.RateLimitBurst,
		RequestTimeout: 30 * time.Second,
	}
	if cfg.Middleware.EnableCORS {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.Middleware.AllowedOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.Middleware.AllowedOrigins
		}
		middlewareConfig.CORS = corsConfig
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      middleware.Chain(middlewareConfig)(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.Sequences.Enabled {
		if err := svc.Sequences.Start(); err != nil {
			logger.Error("Failed to start sequence dispatcher", zap.Error(err))
		} else {
			logger.Info("Sequence dispatcher started",
				zap.Int("interval_minutes", cfg.Sequences.IntervalMinutes))
		}
	}

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if svc.Sequences.IsRunning() {
		if err := svc.Sequences.Stop(); err != nil {
			logger.Error("Failed to stop sequence dispatcher", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
