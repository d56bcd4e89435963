package reimbursement

import (
	"context"
	"strings"
	"time"

	"hr-portal/internal/domain"
	"hr-portal/internal/events"
	"hr-portal/internal/messaging/kafka"
	reimbursementerrors "hr-portal/internal/reimbursement/errors"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Review records a manager or admin decision. A claim may be reviewed again
// after a decision; moving Rejected to Approved is left to admins by the
// resolver. The status read at the start guards the update.
func (s *service) Review(ctx context.Context, p domain.Principal, id string, req ReviewReimbursementRequest) (resp ReimbursementResponse, err error) {
	log := s.log(ctx)
	target, ok := domain.ParseReviewStatus(req.Status)
	if !ok {
		return ReimbursementResponse{}, reimbursementerrors.ErrInvalidReviewStatus
	}
	defer func() { s.metrics.ObserveReview("reimbursement", string(target), err) }()

	log.Debug("review reimbursement requested",
		zap.String("reimbursement_id", id),
		zap.String("actor_id", p.ID),
		zap.String("target_status", string(target)),
	)

	if _, err := uuid.Parse(id); err != nil {
		return ReimbursementResponse{}, reimbursementerrors.ErrInvalidReimbursementID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("review reimbursement begin tx failed", zap.Error(err))
		return ReimbursementResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	m, err := qtx.FindByID(ctx, id)
	if err != nil {
		return ReimbursementResponse{}, mapRepositoryError(err)
	}
	from := m.Status
	if err := s.resolver.CanReviewReimbursement(p, m.Owner(), from, target); err != nil {
		log.Warn("review reimbursement denied",
			zap.String("reimbursement_id", id),
			zap.String("actor_id", p.ID),
			zap.String("owner_id", m.EmployeeID.String()),
			zap.String("from_status", string(from)),
			zap.Error(err),
		)
		return ReimbursementResponse{}, err
	}

	var remark *string
	if r := strings.TrimSpace(req.Remark); r != "" {
		remark = &r
	}
	decision := Decision{Status: target, Remark: remark, RemarkColumn: RemarkColumnManager}
	if p.IsAdmin() {
		decision.RemarkColumn = RemarkColumnAdmin
	}

	updated, err := qtx.UpdateDecision(ctx, id, from, decision)
	if err != nil {
		log.Error("review reimbursement persist failed", zap.String("reimbursement_id", id), zap.Error(err))
		return ReimbursementResponse{}, apperror.Storage(err)
	}
	if !updated {
		log.Warn("review reimbursement lost race", zap.String("reimbursement_id", id))
		return ReimbursementResponse{}, reimbursementerrors.ErrReimbursementChanged
	}

	now := time.Now().UTC()
	if s.outbox != nil {
		event, err := kafka.NewPendingEvent(ctx, "reimbursement", id, events.ReimbursementReviewedType, events.ReimbursementReviewedTopic,
			events.ReimbursementReviewedEvent{
				EventType:       events.ReimbursementReviewedType,
				RequestID:       contextutil.GetRequestID(ctx),
				ReimbursementID: id,
				EmployeeID:      m.EmployeeID.String(),
				ReviewerID:      p.ID,
				ReviewerRole:    string(p.Role),
				Category:        m.Category,
				Amount:          m.Amount.StringFixed(2),
				FromStatus:      string(from),
				Status:          string(target),
				OccurredAt:      now,
			})
		if err != nil {
			return ReimbursementResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			log.Error("review reimbursement outbox persist failed", zap.String("reimbursement_id", id), zap.Error(err))
			return ReimbursementResponse{}, apperror.Storage(err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("review reimbursement commit failed", zap.String("reimbursement_id", id), zap.Error(err))
		return ReimbursementResponse{}, apperror.Storage(err)
	}
	log.Info("review reimbursement success",
		zap.String("reimbursement_id", id),
		zap.String("actor_id", p.ID),
		zap.String("from_status", string(from)),
		zap.String("status", string(target)),
	)

	m.Status = target
	if p.IsAdmin() {
		m.AdminRemark = remark
	} else {
		m.ManagerRemark = remark
	}
	m.UpdatedAt = now
	return mapToResponse(*m), nil
}
