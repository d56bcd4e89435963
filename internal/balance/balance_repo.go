package balance

import (
	"context"
	"database/sql"

	balanceerrors "hr-portal/internal/balance/errors"
	"hr-portal/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// GetOrCreate is idempotent: concurrent callers for one employee end up
	// reading the same row.
	GetOrCreate(ctx context.Context, employeeID uuid.UUID, policy Policy) (*LeaveBalance, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*LeaveBalance, error)
	// Debit subtracts days from one counter only if enough remain. It reports
	// false when the row is missing or the counter is too low.
	Debit(ctx context.Context, employeeID uuid.UUID, c Category, days int) (bool, error)
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

func (r *repository) GetOrCreate(ctx context.Context, employeeID uuid.UUID, policy Policy) (*LeaveBalance, error) {
	b := policy.NewBalance(employeeID)
	err := r.db.WithContext(ctx).Exec(`
INSERT INTO leave_balances (
	id, employee_id, sick_leave, casual_leave, annual_leave, maternity_leave, paternity_leave, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
ON CONFLICT (employee_id) DO NOTHING`,
		b.ID, b.EmployeeID, b.SickLeave, b.CasualLeave, b.AnnualLeave, b.MaternityLeave, b.PaternityLeave,
	).Error
	if err != nil {
		return nil, err
	}
	return r.FindByEmployee(ctx, employeeID)
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Take(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Debit(ctx context.Context, employeeID uuid.UUID, c Category, days int) (bool, error) {
	col := c.Column()
	if col == "" {
		return false, balanceerrors.ErrUnknownCategory
	}
	res := r.db.WithContext(ctx).Exec(
		"UPDATE leave_balances SET "+col+" = "+col+" - ?, updated_at = NOW() WHERE employee_id = ? AND "+col+" >= ?",
		days, employeeID, days,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
