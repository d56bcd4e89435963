package app

import (
	"context"
	"net/http"

	"hr-portal/internal/config"
	"hr-portal/internal/middleware"
	"hr-portal/internal/observability"
	"hr-portal/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects the infrastructure, registers every module on router and
// returns a cleanup func that closes the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L()

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.ConnectRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("close redis failed", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("close database failed", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()

	router.Use(
		middleware.RequestID(),
		metrics.Middleware(),
	)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ReadTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 2. Register Modules & Routes
	err = registerModules(router, modules{
		cfg:        cfg,
		db:         sqlDB,
		gormDB:     gormDB,
		rdb:        redisClient,
		metrics:    metrics,
		logger:     logger,
		rateLimit:  rate.Limit(cfg.RateLimitPerSecond),
		rateBursts: cfg.RateLimitBurst,
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
