package leave

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"hr-portal/internal/balance"
	balanceerrors "hr-portal/internal/balance/errors"
	"hr-portal/internal/domain"
	leaveerrors "hr-portal/internal/leave/errors"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/observability"
	"hr-portal/internal/scope"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service interface {
	Apply(ctx context.Context, p domain.Principal, req CreateLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, p domain.Principal, id string) error
	Review(ctx context.Context, p domain.Principal, id string, req ReviewLeaveRequest) (LeaveResponse, error)
	ListMine(ctx context.Context, p domain.Principal) ([]LeaveResponse, error)
	ListVisible(ctx context.Context, p domain.Principal) ([]LeaveResponse, error)
	GetByID(ctx context.Context, p domain.Principal, id string) (LeaveResponse, error)
	Stats(ctx context.Context, p domain.Principal) (LeaveStatsResponse, error)
}

// Dependencies are the collaborators shared with the review flow. Outbox and
// Metrics are optional.
type Dependencies struct {
	Balances balance.Repository
	Ledger   balance.Service
	Resolver *scope.Resolver
	Outbox   kafka.OutboxRepository
	Metrics  *observability.Metrics
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances balance.Repository
	ledger   balance.Service
	resolver *scope.Resolver
	outbox   kafka.OutboxRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = scope.NewResolver()
	}
	ledger := deps.Ledger
	if ledger == nil {
		ledger = balance.NewService(deps.Balances, balance.DefaultPolicy)
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: deps.Balances,
		ledger:   ledger,
		resolver: resolver,
		outbox:   deps.Outbox,
		metrics:  deps.Metrics,
		logger:   l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) Apply(ctx context.Context, p domain.Principal, req CreateLeaveRequest) (LeaveResponse, error) {
	log := s.log(ctx)
	log.Debug("apply leave requested",
		zap.String("actor_id", p.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	ownerID, err := uuid.Parse(p.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	category, ok := balance.ParseCategory(req.LeaveType)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, endDate, days, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("apply leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return LeaveResponse{}, leaveerrors.ErrReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := s.balances.WithTx(tx).GetOrCreate(ctx, ownerID, s.ledger.Policy())
	if err != nil {
		log.Error("apply leave balance lookup failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	if remaining := b.Remaining(category); remaining < days {
		log.Warn("apply leave insufficient balance",
			zap.String("actor_id", p.ID),
			zap.String("leave_type", string(category)),
			zap.Int("requested", days),
			zap.Int("remaining", remaining),
		)
		return LeaveResponse{}, balanceerrors.Insufficient(string(category), days, remaining)
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: ownerID,
		LeaveType:  string(category),
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  days,
		Reason:     reason,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	log.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("actor_id", p.ID),
		zap.Int("days", days),
	)

	l.OwnerDepartment = p.Department
	l.OwnerRole = string(p.Role)
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, p domain.Principal, id string) error {
	log := s.log(ctx)
	log.Debug("cancel leave requested", zap.String("leave_id", id), zap.String("actor_id", p.ID))

	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("cancel leave begin tx failed", zap.Error(err))
		return apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if l.EmployeeID.String() != p.ID {
		log.Warn("cancel leave by non owner",
			zap.String("leave_id", id),
			zap.String("actor_id", p.ID),
		)
		return leaveerrors.ErrNotOwner
	}
	if l.Status != domain.StatusPending {
		return leaveerrors.ErrNotPending
	}

	deleted, err := qtx.DeletePending(ctx, id)
	if err != nil {
		log.Error("cancel leave delete failed", zap.String("leave_id", id), zap.Error(err))
		return apperror.Storage(err)
	}
	if !deleted {
		return leaveerrors.ErrNotPending
	}

	if err := tx.Commit(); err != nil {
		log.Error("cancel leave commit failed", zap.Error(err))
		return apperror.Storage(err)
	}
	log.Info("cancel leave success", zap.String("leave_id", id))
	return nil
}

func (s *service) ListMine(ctx context.Context, p domain.Principal) ([]LeaveResponse, error) {
	leaves, err := s.repo.List(ctx, s.resolver.Own(p))
	if err != nil {
		s.log(ctx).Error("list own leaves failed", zap.String("actor_id", p.ID), zap.Error(err))
		return nil, apperror.Storage(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) ListVisible(ctx context.Context, p domain.Principal) ([]LeaveResponse, error) {
	leaves, err := s.repo.List(ctx, s.resolver.VisibleLeaves(p))
	if err != nil {
		s.log(ctx).Error("list visible leaves failed", zap.String("actor_id", p.ID), zap.Error(err))
		return nil, apperror.Storage(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, p domain.Principal, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := s.resolver.CanView(p, l.Owner()); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// Stats sums requested days per status. Admins see every request, everyone
// else only their own plus their remaining balance.
func (s *service) Stats(ctx context.Context, p domain.Principal) (LeaveStatsResponse, error) {
	filter := s.resolver.Own(p)
	if p.IsAdmin() {
		filter = scope.Filter{All: true}
	}

	totals, err := s.repo.SumDaysByStatus(ctx, filter)
	if err != nil {
		s.log(ctx).Error("leave stats failed", zap.String("actor_id", p.ID), zap.Error(err))
		return LeaveStatsResponse{}, apperror.Storage(err)
	}

	var resp LeaveStatsResponse
	for _, t := range totals {
		switch t.Status {
		case domain.StatusPending:
			resp.Pending += t.Days
		case domain.StatusApproved:
			resp.Approved += t.Days
		case domain.StatusRejected:
			resp.Rejected += t.Days
		}
		resp.Total += t.Days
	}

	if p.IsAdmin() {
		return resp, nil
	}

	snap, err := s.ledger.Snapshot(ctx, p.ID)
	if err != nil {
		return LeaveStatsResponse{}, err
	}
	remaining := snap.Total()
	initial := s.ledger.Policy().InitialTotal()
	resp.Remaining = &remaining
	resp.InitialTotal = &initial
	resp.Balances = make(map[string]int, len(balance.Categories))
	for _, c := range balance.Categories {
		resp.Balances[string(c)] = snap.Remaining(c)
	}
	return resp, nil
}

func parsePeriod(start, end string) (time.Time, time.Time, int, error) {
	startDate, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, 0, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, 0, leaveerrors.ErrInvalidDateFormat
	}
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if days <= 0 {
		return time.Time{}, time.Time{}, 0, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, days, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		EmployeeID:    l.EmployeeID.String(),
		EmployeeName:  l.OwnerName,
		Department:    l.OwnerDepartment,
		LeaveType:     l.LeaveType,
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		TotalDays:     l.TotalDays,
		Reason:        l.Reason,
		Status:        string(l.Status),
		ReviewComment: l.ReviewComment,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
	if l.ReviewedBy != nil {
		v := l.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if l.ReviewedAt != nil {
		v := l.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
