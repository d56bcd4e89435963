package reimbursement

import (
	"context"
	"strings"
	"time"

	"hr-portal/internal/domain"
	reimbursementerrors "hr-portal/internal/reimbursement/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CategoryService interface {
	ListActive(ctx context.Context) ([]CategoryResponse, error)
	ListAll(ctx context.Context, p domain.Principal) ([]CategoryResponse, error)
	Create(ctx context.Context, p domain.Principal, req CreateCategoryRequest) (CategoryResponse, error)
	Update(ctx context.Context, p domain.Principal, id string, req UpdateCategoryRequest) (CategoryResponse, error)
}

type categoryService struct {
	repo   CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo CategoryRepository, logger ...*zap.Logger) CategoryService {
	l := zap.L().Named("reimbursement.category_service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reimbursement.category_service")
	}
	return &categoryService{repo: repo, logger: l}
}

func (s *categoryService) ListActive(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.repo.List(ctx, true)
	if err != nil {
		s.logger.Error("list active categories failed", zap.Error(err))
		return nil, mapCategoryError(err)
	}
	return mapCategories(categories), nil
}

func (s *categoryService) ListAll(ctx context.Context, p domain.Principal) ([]CategoryResponse, error) {
	if !p.IsAdmin() {
		return nil, reimbursementerrors.ErrAdminOnly
	}
	categories, err := s.repo.List(ctx, false)
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		return nil, mapCategoryError(err)
	}
	return mapCategories(categories), nil
}

func (s *categoryService) Create(ctx context.Context, p domain.Principal, req CreateCategoryRequest) (CategoryResponse, error) {
	if !p.IsAdmin() {
		return CategoryResponse{}, reimbursementerrors.ErrAdminOnly
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CategoryResponse{}, reimbursementerrors.ErrCategoryNameRequired
	}

	c := &Category{
		ID:              uuid.New(),
		Name:            name,
		RequiresReceipt: true,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if req.MaxLimit != nil {
		limit, err := parseLimit(req.MaxLimit.String())
		if err != nil {
			return CategoryResponse{}, err
		}
		c.MaxLimit = limit
	}
	if req.RequiresReceipt != nil {
		c.RequiresReceipt = *req.RequiresReceipt
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, c); err != nil {
		mapped := mapCategoryError(err)
		s.logger.Warn("create category failed", zap.String("name", name), zap.Error(err))
		return CategoryResponse{}, mapped
	}
	s.logger.Info("category created", zap.String("category_id", c.ID.String()), zap.String("name", name))
	return mapCategory(*c), nil
}

func (s *categoryService) Update(ctx context.Context, p domain.Principal, id string, req UpdateCategoryRequest) (CategoryResponse, error) {
	if !p.IsAdmin() {
		return CategoryResponse{}, reimbursementerrors.ErrAdminOnly
	}
	if _, err := uuid.Parse(id); err != nil {
		return CategoryResponse{}, reimbursementerrors.ErrInvalidCategoryID
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CategoryResponse{}, mapCategoryError(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return CategoryResponse{}, reimbursementerrors.ErrCategoryNameRequired
		}
		c.Name = name
	}
	switch {
	case req.ClearMaxLimit:
		c.MaxLimit = decimal.NullDecimal{}
	case req.MaxLimit != nil:
		limit, err := parseLimit(req.MaxLimit.String())
		if err != nil {
			return CategoryResponse{}, err
		}
		c.MaxLimit = limit
	}
	if req.RequiresReceipt != nil {
		c.RequiresReceipt = *req.RequiresReceipt
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, c); err != nil {
		mapped := mapCategoryError(err)
		s.logger.Warn("update category failed", zap.String("category_id", id), zap.Error(err))
		return CategoryResponse{}, mapped
	}
	s.logger.Info("category updated", zap.String("category_id", id))
	return mapCategory(*c), nil
}

func parseLimit(v string) (decimal.NullDecimal, error) {
	limit, err := parseAmount(v)
	if err != nil {
		return decimal.NullDecimal{}, reimbursementerrors.ErrInvalidMaxLimit
	}
	return decimal.NewNullDecimal(limit), nil
}

func mapCategory(c Category) CategoryResponse {
	resp := CategoryResponse{
		ID:              c.ID.String(),
		Name:            c.Name,
		RequiresReceipt: c.RequiresReceipt,
		IsActive:        c.IsActive,
	}
	if c.MaxLimit.Valid {
		v := c.MaxLimit.Decimal.StringFixed(2)
		resp.MaxLimit = &v
	}
	return resp
}

func mapCategories(categories []Category) []CategoryResponse {
	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = mapCategory(c)
	}
	return resp
}
