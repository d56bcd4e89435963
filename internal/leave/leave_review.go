package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"hr-portal/internal/balance"
	balanceerrors "hr-portal/internal/balance/errors"
	"hr-portal/internal/domain"
	"hr-portal/internal/events"
	leaveerrors "hr-portal/internal/leave/errors"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Review approves or rejects a pending leave. Scope check, balance debit,
// status change and outbox row share one transaction.
func (s *service) Review(ctx context.Context, p domain.Principal, id string, req ReviewLeaveRequest) (resp LeaveResponse, err error) {
	log := s.log(ctx)
	target, ok := domain.ParseReviewStatus(req.Status)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidReviewStatus
	}
	defer func() { s.metrics.ObserveReview("leave", string(target), err) }()

	log.Debug("review leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", p.ID),
		zap.String("target_status", string(target)),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	reviewerID, err := uuid.Parse(p.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("review leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := s.resolver.CanReviewLeave(p, l.Owner()); err != nil {
		log.Warn("review leave denied",
			zap.String("leave_id", id),
			zap.String("actor_id", p.ID),
			zap.String("owner_id", l.EmployeeID.String()),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if l.Status != domain.StatusPending {
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyReviewed
	}

	if target == domain.StatusApproved {
		if err := s.debit(ctx, tx, l); err != nil {
			return LeaveResponse{}, err
		}
	}

	now := time.Now().UTC()
	var comment *string
	if c := strings.TrimSpace(req.Comment); c != "" {
		comment = &c
	}
	updated, err := qtx.UpdateReview(ctx, id, domain.StatusPending, Review{
		Status:     target,
		ReviewedBy: reviewerID,
		Comment:    comment,
		ReviewedAt: now,
	})
	if err != nil {
		log.Error("review leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	if !updated {
		log.Warn("review leave lost race", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyReviewed
	}

	if s.outbox != nil {
		event, err := kafka.NewPendingEvent(ctx, "leave", id, events.LeaveReviewedType, events.LeaveReviewedTopic,
			events.LeaveReviewedEvent{
				EventType:  events.LeaveReviewedType,
				RequestID:  contextutil.GetRequestID(ctx),
				LeaveID:    id,
				EmployeeID: l.EmployeeID.String(),
				ReviewerID: p.ID,
				Category:   l.LeaveType,
				Days:       l.TotalDays,
				Status:     string(target),
				Comment:    strings.TrimSpace(req.Comment),
				OccurredAt: now,
			})
		if err != nil {
			return LeaveResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			log.Error("review leave outbox persist failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, apperror.Storage(err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("review leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	log.Info("review leave success",
		zap.String("leave_id", id),
		zap.String("actor_id", p.ID),
		zap.String("status", string(target)),
	)

	l.Status = target
	l.ReviewedBy = &reviewerID
	l.ReviewComment = comment
	l.ReviewedAt = &now
	return mapToResponse(*l), nil
}

// debit takes the leave days from the owner's balance inside tx. The
// conditional update decides sufficiency, not the figure read at apply time.
func (s *service) debit(ctx context.Context, tx *sql.Tx, l *Leave) error {
	log := s.log(ctx)
	category, ok := balance.ParseCategory(l.LeaveType)
	if !ok {
		return leaveerrors.ErrInvalidLeaveType
	}

	balances := s.balances.WithTx(tx)
	if _, err := balances.GetOrCreate(ctx, l.EmployeeID, s.ledger.Policy()); err != nil {
		log.Error("review leave balance lookup failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return apperror.Storage(err)
	}

	debited, err := balances.Debit(ctx, l.EmployeeID, category, l.TotalDays)
	if errors.Is(err, balanceerrors.ErrUnknownCategory) {
		return leaveerrors.ErrInvalidLeaveType
	}
	if err != nil {
		log.Error("review leave debit failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return apperror.Storage(err)
	}
	if debited {
		return nil
	}

	remaining := 0
	current, err := balances.FindByEmployee(ctx, l.EmployeeID)
	switch {
	case err == nil:
		remaining = current.Remaining(category)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.Storage(err)
	}
	s.metrics.ObserveDebitRejected(string(category))
	log.Warn("review leave insufficient balance",
		zap.String("leave_id", l.ID.String()),
		zap.String("leave_type", string(category)),
		zap.Int("requested", l.TotalDays),
		zap.Int("remaining", remaining),
	)
	return balanceerrors.Insufficient(string(category), l.TotalDays, remaining)
}
