package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"hr-portal/internal/balance"
	balanceerrors "hr-portal/internal/balance/errors"
	"hr-portal/internal/domain"
	"hr-portal/internal/events"
	"hr-portal/internal/leave"
	leaveerrors "hr-portal/internal/leave/errors"
	scopeerrors "hr-portal/internal/scope/errors"
	"hr-portal/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	engEmployee = domain.Principal{ID: uuid.NewString(), Role: domain.RoleEmployee, Department: "Engineering"}
	engManager  = domain.Principal{ID: uuid.NewString(), Role: domain.RoleManager, Department: "Engineering"}
	hrManager   = domain.Principal{ID: uuid.NewString(), Role: domain.RoleManager, Department: "HR"}
	admin       = domain.Principal{ID: uuid.NewString(), Role: domain.RoleAdmin, Department: "Management"}
)

type leaveServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  leave.Service
	repo     *memLeaveRepository
	balances *memBalances
	outbox   *fakeOutbox
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	repo := newMemLeaveRepository()
	for _, p := range []domain.Principal{engEmployee, engManager, hrManager, admin} {
		repo.addOwner(p)
	}
	balances := newMemBalances()
	outbox := &fakeOutbox{}
	svc := leave.NewService(db, repo, leave.Dependencies{
		Balances: balances,
		Outbox:   outbox,
	})

	return &leaveServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		balances: balances,
		outbox:   outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingLeave(owner domain.Principal, category balance.Category, days int) leave.Leave {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return leave.Leave{
		ID:         uuid.New(),
		EmployeeID: uuid.MustParse(owner.ID),
		LeaveType:  string(category),
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, days-1),
		TotalDays:  days,
		Reason:     "flu",
		Status:     domain.StatusPending,
		CreatedAt:  start,
	}
}

func TestLeaveService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("success counts days inclusively and does not debit", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "Sick Leave",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-04",
			Reason:    "flu",
		})

		require.NoError(t, err)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, "SICK", resp.LeaveType)
		assert.Equal(t, string(domain.StatusPending), resp.Status)
		assert.Equal(t, engEmployee.ID, resp.EmployeeID)
		assert.Equal(t, 12, deps.balances.remaining(uuid.MustParse(engEmployee.ID), balance.CategorySick))
		assert.Equal(t, 1, deps.balances.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative inverted range", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: "2026-03-10",
			EndDate:   "2026-03-05",
			Reason:    "trip",
		})

		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidDateRange))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative bad date format", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: "10/03/2026",
			EndDate:   "2026-03-12",
			Reason:    "trip",
		})

		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidDateFormat))
	})

	t.Run("negative unknown category", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "UNPAID",
			StartDate: "2026-03-10",
			EndDate:   "2026-03-10",
			Reason:    "x",
		})

		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidLeaveType))
	})

	t.Run("negative blank reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "CASUAL",
			StartDate: "2026-03-10",
			EndDate:   "2026-03-10",
			Reason:    "   ",
		})

		assert.True(t, errors.Is(err, leaveerrors.ErrReasonRequired))
	})

	t.Run("negative insufficient balance carries remaining", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.balances.set(uuid.MustParse(engEmployee.ID), balance.CategoryCasual, 2)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "CASUAL",
			StartDate: "2026-03-10",
			EndDate:   "2026-03-12",
			Reason:    "moving house",
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, balanceerrors.ErrInsufficientBalance))
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, balanceerrors.InsufficientDetails{Category: "CASUAL", Requested: 3, Remaining: 2}, appErr.Details)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative persist failure is a storage error", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.createErr = errors.New("connection reset")
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Apply(ctx, engEmployee, leave.CreateLeaveRequest{
			LeaveType: "SICK",
			StartDate: "2026-03-10",
			EndDate:   "2026-03-10",
			Reason:    "flu",
		})

		assert.True(t, apperror.HasCode(err, apperror.CodeStorageError))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("success owner cancels pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 2)
		deps.repo.seed(l)
		expectTx(t, deps.sqlMock, true)

		err := deps.service.Cancel(ctx, engEmployee, l.ID.String())

		assert.NoError(t, err)
		_, err = deps.repo.FindByID(ctx, l.ID.String())
		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 2)
		deps.repo.seed(l)
		expectTx(t, deps.sqlMock, false)

		err := deps.service.Cancel(ctx, engManager, l.ID.String())

		assert.True(t, errors.Is(err, leaveerrors.ErrNotOwner))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	for _, status := range []domain.Status{domain.StatusApproved, domain.StatusRejected} {
		t.Run("negative already "+string(status), func(t *testing.T) {
			deps := setupLeaveServiceTest(t)
			defer deps.db.Close()

			employeeID := uuid.MustParse(engEmployee.ID)
			deps.balances.set(employeeID, balance.CategorySick, 10)
			l := pendingLeave(engEmployee, balance.CategorySick, 2)
			l.Status = status
			deps.repo.seed(l)
			expectTx(t, deps.sqlMock, false)

			err := deps.service.Cancel(ctx, engEmployee, l.ID.String())

			assert.True(t, errors.Is(err, leaveerrors.ErrNotPending))
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
			assert.Equal(t, status, deps.repo.get(l.ID.String()).Status)
			assert.Equal(t, 10, deps.balances.remaining(employeeID, balance.CategorySick))
			assert.Empty(t, deps.outbox.events)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Cancel(ctx, engEmployee, uuid.NewString())

		assert.True(t, errors.Is(err, leaveerrors.ErrLeaveNotFound))
	})
}

func TestLeaveService_Review(t *testing.T) {
	ctx := context.Background()

	t.Run("success manager approves then second approval is rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 3)
		deps.repo.seed(l)
		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, false)

		resp, err := deps.service.Review(ctx, engManager, l.ID.String(), leave.ReviewLeaveRequest{Status: "Approved", Comment: "get well"})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusApproved), resp.Status)
		require.NotNil(t, resp.ReviewedBy)
		assert.Equal(t, engManager.ID, *resp.ReviewedBy)
		require.NotNil(t, resp.ReviewComment)
		assert.Equal(t, "get well", *resp.ReviewComment)
		assert.Equal(t, 9, deps.balances.remaining(uuid.MustParse(engEmployee.ID), balance.CategorySick))
		require.Len(t, deps.outbox.events, 1)
		assert.Equal(t, events.LeaveReviewedTopic, deps.outbox.events[0].Topic)

		_, err = deps.service.Review(ctx, engManager, l.ID.String(), leave.ReviewLeaveRequest{Status: "APPROVED"})

		assert.True(t, errors.Is(err, leaveerrors.ErrLeaveAlreadyReviewed))
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
		assert.Equal(t, 9, deps.balances.remaining(uuid.MustParse(engEmployee.ID), balance.CategorySick))
		assert.Len(t, deps.outbox.events, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success reject leaves balance untouched", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategoryAnnual, 5)
		deps.repo.seed(l)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Review(ctx, admin, l.ID.String(), leave.ReviewLeaveRequest{Status: "REJECTED"})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusRejected), resp.Status)
		assert.Equal(t, -1, deps.balances.remaining(uuid.MustParse(engEmployee.ID), balance.CategoryAnnual))
	})

	t.Run("negative employee cannot review even own request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		own := pendingLeave(engEmployee, balance.CategorySick, 1)
		deps.repo.seed(own)
		colleague := domain.Principal{ID: uuid.NewString(), Role: domain.RoleEmployee, Department: "Engineering"}
		deps.repo.addOwner(colleague)
		other := pendingLeave(colleague, balance.CategorySick, 1)
		deps.repo.seed(other)
		expectTx(t, deps.sqlMock, false)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, engEmployee, own.ID.String(), leave.ReviewLeaveRequest{Status: "APPROVED"})
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

		_, err = deps.service.Review(ctx, engEmployee, other.ID.String(), leave.ReviewLeaveRequest{Status: "APPROVED"})
		assert.True(t, errors.Is(err, scopeerrors.ErrEmployeeCannotReview))

		assert.Equal(t, domain.StatusPending, deps.repo.get(own.ID.String()).Status)
		assert.Equal(t, domain.StatusPending, deps.repo.get(other.ID.String()).Status)
	})

	t.Run("negative manager self review", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engManager, balance.CategoryCasual, 1)
		deps.repo.seed(l)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, engManager, l.ID.String(), leave.ReviewLeaveRequest{Status: "APPROVED"})

		assert.True(t, errors.Is(err, scopeerrors.ErrSelfReview))
	})

	t.Run("negative manager from another department", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 1)
		deps.repo.seed(l)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, hrManager, l.ID.String(), leave.ReviewLeaveRequest{Status: "REJECTED"})

		assert.True(t, errors.Is(err, scopeerrors.ErrOutOfDepartment))
		assert.Equal(t, domain.StatusPending, deps.repo.get(l.ID.String()).Status)
	})

	t.Run("negative balance spent since apply", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 3)
		deps.repo.seed(l)
		deps.balances.set(uuid.MustParse(engEmployee.ID), balance.CategorySick, 2)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, engManager, l.ID.String(), leave.ReviewLeaveRequest{Status: "APPROVED"})

		assert.True(t, errors.Is(err, balanceerrors.ErrInsufficientBalance))
		assert.Equal(t, domain.StatusPending, deps.repo.get(l.ID.String()).Status)
		assert.Equal(t, 2, deps.balances.remaining(uuid.MustParse(engEmployee.ID), balance.CategorySick))
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative lost race rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 1)
		deps.repo.seed(l)
		deps.repo.forceLostRace = true
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, engManager, l.ID.String(), leave.ReviewLeaveRequest{Status: "REJECTED"})

		assert.True(t, errors.Is(err, leaveerrors.ErrLeaveAlreadyReviewed))
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid status", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Review(ctx, engManager, uuid.NewString(), leave.ReviewLeaveRequest{Status: "PENDING"})

		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidReviewStatus))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, admin, uuid.NewString(), leave.ReviewLeaveRequest{Status: "APPROVED"})

		assert.True(t, errors.Is(err, leaveerrors.ErrLeaveNotFound))
	})
}

func TestLeaveService_ConcurrentApprovals(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t)
	defer deps.db.Close()

	const requests = 6
	const days = 3
	employeeID := uuid.MustParse(engEmployee.ID)
	deps.balances.set(employeeID, balance.CategorySick, 12)

	ids := make([]string, requests)
	for i := range ids {
		l := pendingLeave(engEmployee, balance.CategorySick, days)
		deps.repo.seed(l)
		ids[i] = l.ID.String()
	}

	want := 12 / days
	deps.sqlMock.MatchExpectationsInOrder(false)
	for i := 0; i < requests; i++ {
		deps.sqlMock.ExpectBegin()
	}
	for i := 0; i < want; i++ {
		deps.sqlMock.ExpectCommit()
	}
	for i := 0; i < requests-want; i++ {
		deps.sqlMock.ExpectRollback()
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		approved     int
		insufficient int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := deps.service.Review(ctx, engManager, id, leave.ReviewLeaveRequest{Status: "APPROVED"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case errors.Is(err, balanceerrors.ErrInsufficientBalance):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, want, approved)
	assert.Equal(t, requests-want, insufficient)
	assert.Equal(t, 0, deps.balances.remaining(employeeID, balance.CategorySick))
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestLeaveService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t)
	defer deps.db.Close()

	empLeave := pendingLeave(engEmployee, balance.CategorySick, 1)
	mgrLeave := pendingLeave(engManager, balance.CategoryCasual, 1)
	hrLeave := pendingLeave(hrManager, balance.CategoryAnnual, 2)
	deps.repo.seed(empLeave)
	deps.repo.seed(mgrLeave)
	deps.repo.seed(hrLeave)

	t.Run("manager team view excludes own and other departments", func(t *testing.T) {
		resp, err := deps.service.ListVisible(ctx, engManager)
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, empLeave.ID.String(), resp[0].ID)
	})

	t.Run("manager personal view", func(t *testing.T) {
		resp, err := deps.service.ListMine(ctx, engManager)
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, mgrLeave.ID.String(), resp[0].ID)
	})

	t.Run("admin sees all", func(t *testing.T) {
		resp, err := deps.service.ListVisible(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, resp, 3)
	})

	t.Run("get by id respects scope", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, engManager, empLeave.ID.String())
		assert.NoError(t, err)

		_, err = deps.service.GetByID(ctx, engManager, hrLeave.ID.String())
		assert.True(t, errors.Is(err, scopeerrors.ErrNotVisible))

		_, err = deps.service.GetByID(ctx, engEmployee, "not-a-uuid")
		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidLeaveID))
	})
}

func TestLeaveService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("employee without balance gets defaults and nothing is created", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave(engEmployee, balance.CategorySick, 2)
		deps.repo.seed(l)
		approved := pendingLeave(engEmployee, balance.CategoryAnnual, 4)
		approved.Status = domain.StatusApproved
		deps.repo.seed(approved)

		resp, err := deps.service.Stats(ctx, engEmployee)

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Pending)
		assert.Equal(t, 4, resp.Approved)
		assert.Equal(t, 6, resp.Total)
		require.NotNil(t, resp.Remaining)
		assert.Equal(t, 142, *resp.Remaining)
		require.NotNil(t, resp.InitialTotal)
		assert.Equal(t, 142, *resp.InitialTotal)
		assert.Equal(t, 12, resp.Balances["SICK"])
		assert.Equal(t, 0, deps.balances.created)
	})

	t.Run("admin sees totals for everyone without balance", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.seed(pendingLeave(engEmployee, balance.CategorySick, 2))
		rejected := pendingLeave(hrManager, balance.CategorySick, 1)
		rejected.Status = domain.StatusRejected
		deps.repo.seed(rejected)

		resp, err := deps.service.Stats(ctx, admin)

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Pending)
		assert.Equal(t, 1, resp.Rejected)
		assert.Equal(t, 3, resp.Total)
		assert.Nil(t, resp.Remaining)
	})
}
