package roster

import (
	"context"
	"database/sql"

	"hr-portal/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=roster_repo.go -destination=mock/roster_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) (bool, error)
	// CreditSalary adds amount in one statement and returns the new balance.
	CreditSalary(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	CountByRole(ctx context.Context) ([]RoleCount, error)
	CountLeavesByStatus(ctx context.Context) ([]StatusCount, error)
	DepartmentStats(ctx context.Context) ([]DepartmentStat, error)
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

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Select("users.*, mgr.name AS manager_name").
		Joins("LEFT JOIN users mgr ON mgr.id = users.manager_id").
		Order("users.name").
		Find(&users).Error
	return users, err
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *repository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreditSalary(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	var row struct {
		SalaryBalance decimal.Decimal
	}
	res := r.db.WithContext(ctx).Raw(
		`UPDATE users SET salary_balance = salary_balance + ?, updated_at = NOW()
		 WHERE id = ? RETURNING salary_balance`,
		amount, id,
	).Scan(&row)
	if res.Error != nil {
		return decimal.Decimal{}, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Decimal{}, gorm.ErrRecordNotFound
	}
	return row.SalaryBalance, nil
}

func (r *repository) CountByRole(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&counts).Error
	return counts, err
}

func (r *repository) CountLeavesByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Table("leaves").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	return counts, err
}

// DepartmentStats counts people per department. on_leave is the number of
// distinct people with at least one approved leave.
func (r *repository) DepartmentStats(ctx context.Context) ([]DepartmentStat, error) {
	var stats []DepartmentStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(NULLIF(u.department, ''), 'N/A') AS department,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE u.role = 'Employee') AS employees,
		       COUNT(*) FILTER (WHERE u.role = 'Manager') AS managers,
		       COUNT(*) FILTER (WHERE EXISTS (
		           SELECT 1 FROM leaves l WHERE l.employee_id = u.id AND l.status = 'APPROVED'
		       )) AS on_leave
		FROM users u
		GROUP BY 1
		ORDER BY total DESC, department`).
		Scan(&stats).Error
	return stats, err
}
