package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"hr-portal/internal/balance"
	"hr-portal/internal/config"
	"hr-portal/internal/events"
	"hr-portal/internal/messaging/kafka/consumer"
	"hr-portal/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer provisions leave balances from employee lifecycle events.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	balanceRepo := balance.NewRepository(gormDB)
	balanceService := balance.NewService(balanceRepo, balance.DefaultPolicy, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.EmployeeLifecycleTopic,
		GroupID:        cfg.ConsumerGroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeEmployeeLifecycle(ctx, reader, balanceService, consumer.DefaultRetryDelay, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
