package reimbursement_test

import (
	"context"
	"errors"
	"testing"

	"hr-portal/internal/domain"
	"hr-portal/internal/reimbursement"
	reimbursementerrors "hr-portal/internal/reimbursement/errors"
	"hr-portal/internal/scope"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (reimbursement.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return reimbursement.NewRepository(db), mock
}

func TestRepository_UpdateDecision(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	remark := "ok"
	decision := reimbursement.Decision{
		Status:       domain.StatusApproved,
		RemarkColumn: reimbursement.RemarkColumnManager,
		Remark:       &remark,
	}

	t.Run("writes only the reviewer's remark column", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`UPDATE "reimbursements" SET "manager_remark"=\$1,"status"=\$2,"updated_at"=\$3 WHERE \(?id = \$4 AND status = \$5\)?`).
			WithArgs(&remark, domain.StatusApproved, sqlmock.AnyArg(), id, domain.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateDecision(ctx, id, domain.StatusPending, decision)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale status updates nothing", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`UPDATE "reimbursements" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateDecision(ctx, id, domain.StatusRejected, decision)

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := setupRepoTest(t)

	mock.ExpectQuery(`SELECT reimbursements\.\*, owner\.name AS owner_name, .* FROM "reimbursements" ` +
		`JOIN users owner ON owner\.id = reimbursements\.employee_id ` +
		`LEFT JOIN reimbursement_categories cat ON cat\.name = reimbursements\.category ` +
		`WHERE owner\.department = \$1 AND reimbursements\.employee_id <> \$2 ORDER BY reimbursements\.created_at DESC`).
		WithArgs("HR", "mgr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "category", "amount", "status", "owner_role", "owner_department", "category_max_limit"}).
			AddRow(uuid.NewString(), uuid.NewString(), "Travel", "6000.00", "PENDING", "Employee", "HR", "5000.00"))

	items, err := repo.List(context.Background(), scope.Filter{Department: "HR", ExcludeOwnerID: "mgr-1"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].ExceedsLimit())
	assert.Equal(t, "HR", items[0].OwnerDepartment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Overview(t *testing.T) {
	repo, mock := setupRepoTest(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) AS total_amount, .* FROM "reimbursements"`).
		WithArgs(domain.StatusApproved, domain.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"total_amount", "approved_amount", "pending_amount"}).
			AddRow("390.00", "250.00", "100.00"))

	o, err := repo.Overview(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "390", o.TotalAmount.String())
	assert.Equal(t, "250", o.ApprovedAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryService_UniqueViolation(t *testing.T) {
	repo := newMemCategoryRepository(travel)
	repo.saveErr = &pgconn.PgError{Code: "23505", ConstraintName: "uq_reimbursement_category_name"}
	svc := reimbursement.NewCategoryService(repo)
	name := "Internet"

	_, err := svc.Update(context.Background(), admin, travel.ID.String(), reimbursement.UpdateCategoryRequest{Name: &name})

	assert.True(t, errors.Is(err, reimbursementerrors.ErrCategoryAlreadyExists))
}
