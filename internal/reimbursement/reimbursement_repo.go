package reimbursement

import (
	"context"
	"database/sql"

	"hr-portal/internal/domain"
	"hr-portal/internal/scope"
	"hr-portal/internal/shared/dbtx"

	"gorm.io/gorm"
)

const (
	ownerJoin    = "JOIN users owner ON owner.id = reimbursements.employee_id"
	categoryJoin = "LEFT JOIN reimbursement_categories cat ON cat.name = reimbursements.category"
	selectJoined = "reimbursements.*, owner.name AS owner_name, owner.role AS owner_role, " +
		"owner.department AS owner_department, cat.max_limit AS category_max_limit"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Reimbursement) error
	FindByID(ctx context.Context, id string) (*Reimbursement, error)
	List(ctx context.Context, filter scope.Filter) ([]Reimbursement, error)
	// UpdateDecision applies d only while the row still has status expected.
	UpdateDecision(ctx context.Context, id string, expected domain.Status, d Decision) (bool, error)
	Overview(ctx context.Context) (AmountOverview, error)
	TotalsByCategory(ctx context.Context) ([]CategoryTotal, error)
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

func (r *repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Reimbursement{}).
		Select(selectJoined).
		Joins(ownerJoin).
		Joins(categoryJoin)
}

func (r *repository) Create(ctx context.Context, m *Reimbursement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Reimbursement, error) {
	var m Reimbursement
	err := r.joined(ctx).
		Where("reimbursements.id = ?", id).
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, filter scope.Filter) ([]Reimbursement, error) {
	var items []Reimbursement
	err := r.joined(ctx).
		Scopes(filter.Apply("reimbursements.employee_id", "owner.department")).
		Order("reimbursements.created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) UpdateDecision(ctx context.Context, id string, expected domain.Status, d Decision) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Reimbursement{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":       d.Status,
			d.RemarkColumn: d.Remark,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Overview(ctx context.Context) (AmountOverview, error) {
	var o AmountOverview
	err := r.db.WithContext(ctx).
		Model(&Reimbursement{}).
		Select(
			"COALESCE(SUM(amount), 0) AS total_amount, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS approved_amount, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS pending_amount",
			domain.StatusApproved, domain.StatusPending,
		).
		Scan(&o).Error
	return o, err
}

func (r *repository) TotalsByCategory(ctx context.Context) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	err := r.db.WithContext(ctx).
		Model(&Reimbursement{}).
		Select("category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&totals).Error
	return totals, err
}

type CategoryRepository interface {
	WithTx(tx *sql.Tx) CategoryRepository
	Create(ctx context.Context, c *Category) error
	Save(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context, activeOnly bool) ([]Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *sql.Tx) CategoryRepository {
	return &categoryRepository{db: dbtx.Bind(r.db, tx)}
}

func (r *categoryRepository) Create(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepository) Save(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByName matches case-insensitively so "travel" finds "Travel".
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).Take(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	var categories []Category
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&categories).Error
	return categories, err
}
