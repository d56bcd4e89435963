package main

import (
	"flag"
	"os"

	"hr-portal/internal/app"
	"hr-portal/internal/config"

	"go.uber.org/zap"
)

func main() {
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "password for every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := app.RunSeed(cfg, *password); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}
