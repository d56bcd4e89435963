package leave

import (
	"context"
	"database/sql"

	"hr-portal/internal/domain"
	"hr-portal/internal/scope"
	"hr-portal/internal/shared/dbtx"

	"gorm.io/gorm"
)

const (
	ownerJoin       = "JOIN users owner ON owner.id = leaves.employee_id"
	selectWithOwner = "leaves.*, owner.name AS owner_name, owner.role AS owner_role, owner.department AS owner_department"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	List(ctx context.Context, filter scope.Filter) ([]Leave, error)
	// UpdateReview writes the decision only while the row still has status
	// expected. It reports false when another call got there first.
	UpdateReview(ctx context.Context, id string, expected domain.Status, review Review) (bool, error)
	DeletePending(ctx context.Context, id string) (bool, error)
	SumDaysByStatus(ctx context.Context, filter scope.Filter) ([]StatusTotal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

func (r *repository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Leave{}).
		Select(selectWithOwner).
		Joins(ownerJoin)
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.withOwner(ctx).
		Where("leaves.id = ?", id).
		Take(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, filter scope.Filter) ([]Leave, error) {
	var leaves []Leave
	err := r.withOwner(ctx).
		Scopes(filter.Apply("leaves.employee_id", "owner.department")).
		Order("leaves.created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) UpdateReview(ctx context.Context, id string, expected domain.Status, review Review) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":         review.Status,
			"reviewed_by":    review.ReviewedBy,
			"review_comment": review.Comment,
			"reviewed_at":    review.ReviewedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) DeletePending(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&Leave{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SumDaysByStatus(ctx context.Context, filter scope.Filter) ([]StatusTotal, error) {
	var totals []StatusTotal
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Select("leaves.status AS status, COALESCE(SUM(leaves.total_days), 0) AS days, COUNT(*) AS count").
		Joins(ownerJoin).
		Scopes(filter.Apply("leaves.employee_id", "owner.department")).
		Group("leaves.status").
		Scan(&totals).Error
	return totals, err
}
