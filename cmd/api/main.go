package main

import (
	"hr-portal/internal/app"
	"hr-portal/internal/bootstrap"
	"hr-portal/internal/config"
	"hr-portal/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := newLogger(cfg)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	if err := bootstrap.StartHTTPServer(r, bootstrap.ServerConfigFrom(cfg), auditLogger, cleanup); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	build := zap.NewDevelopment
	if cfg.IsProduction() {
		build = zap.NewProduction
	}
	logger, err := build()
	if err != nil {
		panic(err)
	}
	return logger
}
