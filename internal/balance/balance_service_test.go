package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"hr-portal/internal/balance"
	balanceerrors "hr-portal/internal/balance/errors"
	"hr-portal/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBalanceRepository struct {
	getOrCreateFn    func(ctx context.Context, employeeID uuid.UUID, policy balance.Policy) (*balance.LeaveBalance, error)
	findByEmployeeFn func(ctx context.Context, employeeID uuid.UUID) (*balance.LeaveBalance, error)
	debitFn          func(ctx context.Context, employeeID uuid.UUID, c balance.Category, days int) (bool, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) GetOrCreate(ctx context.Context, employeeID uuid.UUID, policy balance.Policy) (*balance.LeaveBalance, error) {
	return f.getOrCreateFn(ctx, employeeID, policy)
}

func (f *fakeBalanceRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*balance.LeaveBalance, error) {
	return f.findByEmployeeFn(ctx, employeeID)
}

func (f *fakeBalanceRepository) Debit(ctx context.Context, employeeID uuid.UUID, c balance.Category, days int) (bool, error) {
	return f.debitFn(ctx, employeeID, c, days)
}

func TestBalanceService_Provision(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			getOrCreateFn: func(ctx context.Context, id uuid.UUID, policy balance.Policy) (*balance.LeaveBalance, error) {
				assert.Equal(t, employeeID, id)
				b := policy.NewBalance(id)
				return &b, nil
			},
		}
		svc := balance.NewService(repo, nil)

		b, err := svc.Provision(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, 90, b.MaternityLeave)
	})

	t.Run("negative invalid employee id", func(t *testing.T) {
		svc := balance.NewService(&fakeBalanceRepository{}, nil)

		_, err := svc.Provision(ctx, "not-a-uuid")

		assert.True(t, errors.Is(err, balanceerrors.ErrInvalidEmployeeID))
	})

	t.Run("negative storage failure", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			getOrCreateFn: func(ctx context.Context, id uuid.UUID, policy balance.Policy) (*balance.LeaveBalance, error) {
				return nil, errors.New("connection refused")
			},
		}
		svc := balance.NewService(repo, nil)

		_, err := svc.Provision(ctx, employeeID.String())

		assert.True(t, apperror.HasCode(err, apperror.CodeStorageError))
	})
}

func TestBalanceService_Snapshot(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("missing row reports defaults without creating", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			findByEmployeeFn: func(ctx context.Context, id uuid.UUID) (*balance.LeaveBalance, error) {
				return nil, gorm.ErrRecordNotFound
			},
			getOrCreateFn: func(ctx context.Context, id uuid.UUID, policy balance.Policy) (*balance.LeaveBalance, error) {
				t.Fatal("snapshot must not create a balance")
				return nil, nil
			},
		}
		svc := balance.NewService(repo, nil)

		b, err := svc.Snapshot(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, uuid.Nil, b.ID)
		assert.Equal(t, balance.DefaultPolicy.InitialTotal(), b.Total())
	})

	t.Run("existing row", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			findByEmployeeFn: func(ctx context.Context, id uuid.UUID) (*balance.LeaveBalance, error) {
				b := balance.DefaultPolicy.NewBalance(id)
				b.SickLeave = 9
				return &b, nil
			},
		}
		svc := balance.NewService(repo, nil)

		b, err := svc.Snapshot(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, 9, b.Remaining(balance.CategorySick))
		assert.Equal(t, 139, b.Total())
	})
}

func TestParseCategory(t *testing.T) {
	c, ok := balance.ParseCategory("Sick Leave")
	assert.True(t, ok)
	assert.Equal(t, balance.CategorySick, c)
	assert.Equal(t, "sick_leave", c.Column())

	c, ok = balance.ParseCategory("annual")
	assert.True(t, ok)
	assert.Equal(t, balance.CategoryAnnual, c)

	_, ok = balance.ParseCategory("UNPAID")
	assert.False(t, ok)

	assert.Equal(t, 142, balance.DefaultPolicy.InitialTotal())
}
