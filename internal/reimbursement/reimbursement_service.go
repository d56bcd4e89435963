package reimbursement

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"hr-portal/internal/domain"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/observability"
	reimbursementerrors "hr-portal/internal/reimbursement/errors"
	"hr-portal/internal/scope"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"
	"hr-portal/internal/shared/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	Apply(ctx context.Context, p domain.Principal, req CreateReimbursementRequest, receiptRef string) (ReimbursementResponse, error)
	Review(ctx context.Context, p domain.Principal, id string, req ReviewReimbursementRequest) (ReimbursementResponse, error)
	ListMine(ctx context.Context, p domain.Principal) ([]ReimbursementResponse, error)
	ListVisible(ctx context.Context, p domain.Principal) ([]ReimbursementResponse, error)
	GetByID(ctx context.Context, p domain.Principal, id string) (ReimbursementResponse, error)
	AdminStats(ctx context.Context, p domain.Principal) (AdminStatsResponse, error)
}

type Dependencies struct {
	Categories CategoryRepository
	Resolver   *scope.Resolver
	Outbox     kafka.OutboxRepository
	Metrics    *observability.Metrics
	// EnforceReceipt rejects claims without a receipt when the category
	// requires one.
	EnforceReceipt bool
}

type service struct {
	db             *sql.DB
	repo           Repository
	categories     CategoryRepository
	resolver       *scope.Resolver
	outbox         kafka.OutboxRepository
	metrics        *observability.Metrics
	enforceReceipt bool
	logger         *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("reimbursement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reimbursement.service")
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = scope.NewResolver()
	}
	return &service{
		db:             db,
		repo:           repo,
		categories:     deps.Categories,
		resolver:       resolver,
		outbox:         deps.Outbox,
		metrics:        deps.Metrics,
		enforceReceipt: deps.EnforceReceipt,
		logger:         l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) Apply(ctx context.Context, p domain.Principal, req CreateReimbursementRequest, receiptRef string) (ReimbursementResponse, error) {
	log := s.log(ctx)
	log.Debug("apply reimbursement requested",
		zap.String("actor_id", p.ID),
		zap.String("category", req.Category),
		zap.String("amount", req.Amount.String()),
	)

	ownerID, err := uuid.Parse(p.ID)
	if err != nil {
		return ReimbursementResponse{}, reimbursementerrors.ErrInvalidActorID
	}
	amount, err := parseAmount(req.Amount.String())
	if err != nil {
		return ReimbursementResponse{}, reimbursementerrors.ErrInvalidAmount
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return ReimbursementResponse{}, reimbursementerrors.ErrDescriptionRequired
	}
	name := strings.TrimSpace(req.Category)
	if name == "" {
		return ReimbursementResponse{}, reimbursementerrors.ErrCategoryRequired
	}
	from, to, err := parseOptionalPeriod(req.FromDate, req.ToDate)
	if err != nil {
		log.Warn("apply reimbursement validation failed", zap.Error(err))
		return ReimbursementResponse{}, err
	}

	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReimbursementResponse{}, reimbursementerrors.ErrUnknownCategory
		}
		log.Error("apply reimbursement category lookup failed", zap.Error(err))
		return ReimbursementResponse{}, apperror.Storage(err)
	}
	if !category.IsActive {
		return ReimbursementResponse{}, reimbursementerrors.ErrCategoryInactive
	}

	var ref *string
	if r := strings.TrimSpace(receiptRef); r != "" {
		ref = &r
	}
	if s.enforceReceipt && category.RequiresReceipt && ref == nil {
		log.Warn("apply reimbursement missing receipt",
			zap.String("actor_id", p.ID),
			zap.String("category", category.Name),
		)
		return ReimbursementResponse{}, reimbursementerrors.ErrReceiptRequired
	}

	now := time.Now().UTC()
	m := &Reimbursement{
		ID:          uuid.New(),
		EmployeeID:  ownerID,
		Category:    category.Name,
		Amount:      amount,
		Description: description,
		FromDate:    from,
		ToDate:      to,
		ReceiptRef:  ref,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		log.Error("apply reimbursement persist failed", zap.Error(err))
		return ReimbursementResponse{}, apperror.Storage(err)
	}
	log.Info("apply reimbursement success",
		zap.String("reimbursement_id", m.ID.String()),
		zap.String("actor_id", p.ID),
		zap.String("amount", amount.StringFixed(2)),
	)

	m.OwnerRole = string(p.Role)
	m.OwnerDepartment = p.Department
	m.CategoryMaxLimit = category.MaxLimit
	return mapToResponse(*m), nil
}

func (s *service) ListMine(ctx context.Context, p domain.Principal) ([]ReimbursementResponse, error) {
	items, err := s.repo.List(ctx, s.resolver.Own(p))
	if err != nil {
		s.log(ctx).Error("list own reimbursements failed", zap.String("actor_id", p.ID), zap.Error(err))
		return nil, apperror.Storage(err)
	}
	return mapToListResponse(items), nil
}

func (s *service) ListVisible(ctx context.Context, p domain.Principal) ([]ReimbursementResponse, error) {
	items, err := s.repo.List(ctx, s.resolver.VisibleReimbursements(p))
	if err != nil {
		s.log(ctx).Error("list visible reimbursements failed", zap.String("actor_id", p.ID), zap.Error(err))
		return nil, apperror.Storage(err)
	}
	return mapToListResponse(items), nil
}

func (s *service) GetByID(ctx context.Context, p domain.Principal, id string) (ReimbursementResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ReimbursementResponse{}, reimbursementerrors.ErrInvalidReimbursementID
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ReimbursementResponse{}, mapRepositoryError(err)
	}
	if err := s.resolver.CanView(p, m.Owner()); err != nil {
		return ReimbursementResponse{}, err
	}
	return mapToResponse(*m), nil
}

func (s *service) AdminStats(ctx context.Context, p domain.Principal) (AdminStatsResponse, error) {
	if !p.IsAdmin() {
		return AdminStatsResponse{}, reimbursementerrors.ErrAdminOnly
	}
	overview, err := s.repo.Overview(ctx)
	if err != nil {
		s.log(ctx).Error("reimbursement overview failed", zap.Error(err))
		return AdminStatsResponse{}, apperror.Storage(err)
	}
	totals, err := s.repo.TotalsByCategory(ctx)
	if err != nil {
		s.log(ctx).Error("reimbursement category totals failed", zap.Error(err))
		return AdminStatsResponse{}, apperror.Storage(err)
	}

	resp := AdminStatsResponse{
		Overview: OverviewResponse{
			TotalAmount:    overview.TotalAmount.StringFixed(2),
			ApprovedAmount: overview.ApprovedAmount.StringFixed(2),
			PendingAmount:  overview.PendingAmount.StringFixed(2),
		},
		Categories: make([]CategoryStatResponse, len(totals)),
	}
	for i, t := range totals {
		resp.Categories[i] = CategoryStatResponse{
			Category: t.Category,
			Total:    t.Total.StringFixed(2),
			Count:    t.Count,
		}
	}
	return resp, nil
}

func parseAmount(v string) (decimal.Decimal, error) {
	amount, err := money.Parse(v)
	if err != nil {
		return decimal.Decimal{}, reimbursementerrors.ErrInvalidAmount
	}
	return amount, nil
}

func parseOptionalPeriod(from, to string) (*time.Time, *time.Time, error) {
	parse := func(v string) (*time.Time, error) {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, reimbursementerrors.ErrInvalidDateFormat
		}
		return &t, nil
	}

	fromDate, err := parse(from)
	if err != nil {
		return nil, nil, err
	}
	toDate, err := parse(to)
	if err != nil {
		return nil, nil, err
	}
	if fromDate != nil && toDate != nil && toDate.Before(*fromDate) {
		return nil, nil, reimbursementerrors.ErrInvalidDateRange
	}
	return fromDate, toDate, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

func mapToResponse(m Reimbursement) ReimbursementResponse {
	return ReimbursementResponse{
		ID:            m.ID.String(),
		EmployeeID:    m.EmployeeID.String(),
		EmployeeName:  m.OwnerName,
		EmployeeRole:  m.OwnerRole,
		Department:    m.OwnerDepartment,
		Category:      m.Category,
		Amount:        m.Amount.StringFixed(2),
		Description:   m.Description,
		FromDate:      formatDate(m.FromDate),
		ToDate:        formatDate(m.ToDate),
		ReceiptRef:    m.ReceiptRef,
		Status:        string(m.Status),
		ManagerRemark: m.ManagerRemark,
		AdminRemark:   m.AdminRemark,
		ExceedsLimit:  m.ExceedsLimit(),
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(items []Reimbursement) []ReimbursementResponse {
	resp := make([]ReimbursementResponse, len(items))
	for i, m := range items {
		resp[i] = mapToResponse(m)
	}
	return resp
}
