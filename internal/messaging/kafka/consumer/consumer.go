package consumer

import (
	"context"
	"encoding/json"
	"time"

	"hr-portal/internal/balance"
	"hr-portal/internal/events"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Provisioner creates the leave balance for a new employee.
type Provisioner interface {
	Provision(ctx context.Context, employeeID string) (*balance.LeaveBalance, error)
}

const (
	DefaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// ConsumeEmployeeLifecycle provisions a leave balance for every
// employee_created event until ctx is cancelled. A message that fails on
// storage is retried in place with a doubling delay; FetchMessage has
// already moved past it, so committing a later offset would drop it.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances Provisioner,
	retryDelay time.Duration,
	logger *zap.Logger,
) {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		if !handleUntilDone(ctx, msg, balances, retryDelay, log) {
			log.Info("employee lifecycle consumer stopped", zap.Int64("uncommitted_offset", msg.Offset))
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
		}
	}
}

// handleUntilDone returns false only when ctx ends before msg is handled.
func handleUntilDone(ctx context.Context, msg kafkago.Message, balances Provisioner, delay time.Duration, log *zap.Logger) bool {
	for attempt := 1; ; attempt++ {
		if HandleEmployeeCreated(ctx, msg, balances, log) {
			return true
		}
		log.Warn("retrying employee_created event",
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

// HandleEmployeeCreated reports whether msg is done with and can be
// committed. Storage failures report false and the caller tries again.
func HandleEmployeeCreated(ctx context.Context, msg kafkago.Message, balances Provisioner, log *zap.Logger) bool {
	var event events.EmployeeCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee_created event failed", zap.Error(err))
		return true
	}
	if event.EventType != "" && event.EventType != events.EmployeeCreatedType {
		log.Debug("skipping employee lifecycle event", zap.String("event_type", event.EventType))
		return true
	}
	if event.RequestID != "" {
		ctx = contextutil.WithRequestID(ctx, event.RequestID)
	}

	b, err := balances.Provision(ctx, event.EmployeeID)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeStorageError) {
			log.Error("provision leave balance failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			return false
		}
		log.Warn("employee_created event rejected",
			zap.String("employee_id", event.EmployeeID),
			zap.Error(err),
		)
		return true
	}

	log.Info("leave balance provisioned from employee_created event",
		zap.String("employee_id", event.EmployeeID),
		zap.Int("total_days", b.Total()),
	)
	return true
}
