package leave_test

import (
	"context"
	"database/sql"
	"sync"

	"hr-portal/internal/balance"
	"hr-portal/internal/domain"
	"hr-portal/internal/leave"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memLeaveRepository keeps leaves in memory and honours the status guards of
// the SQL repository.
type memLeaveRepository struct {
	mu     sync.Mutex
	leaves map[string]leave.Leave
	owners map[uuid.UUID]scope.Owner

	createErr error
	findErr   error
	updateErr error
	// forceLostRace makes UpdateReview behave as if another reviewer won.
	forceLostRace bool
}

func newMemLeaveRepository() *memLeaveRepository {
	return &memLeaveRepository{
		leaves: map[string]leave.Leave{},
		owners: map[uuid.UUID]scope.Owner{},
	}
}

func (m *memLeaveRepository) addOwner(p domain.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[uuid.MustParse(p.ID)] = scope.Owner{ID: p.ID, Role: string(p.Role), Department: p.Department}
}

func (m *memLeaveRepository) seed(l leave.Leave) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[l.ID.String()] = l
}

func (m *memLeaveRepository) get(id string) leave.Leave {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaves[id]
}

func (m *memLeaveRepository) withOwner(l leave.Leave) leave.Leave {
	o := m.owners[l.EmployeeID]
	l.OwnerRole = o.Role
	l.OwnerDepartment = o.Department
	return l
}

func (m *memLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return m }

func (m *memLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[l.ID.String()] = *l
	return nil
}

func (m *memLeaveRepository) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	l = m.withOwner(l)
	return &l, nil
}

func (m *memLeaveRepository) List(ctx context.Context, filter scope.Filter) ([]leave.Leave, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []leave.Leave
	for _, l := range m.leaves {
		l = m.withOwner(l)
		if filter.Allows(l.Owner()) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLeaveRepository) UpdateReview(ctx context.Context, id string, expected domain.Status, review leave.Review) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	if m.forceLostRace {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok || l.Status != expected {
		return false, nil
	}
	l.Status = review.Status
	l.ReviewedBy = &review.ReviewedBy
	l.ReviewComment = review.Comment
	at := review.ReviewedAt
	l.ReviewedAt = &at
	m.leaves[id] = l
	return true, nil
}

func (m *memLeaveRepository) DeletePending(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok || l.Status != domain.StatusPending {
		return false, nil
	}
	delete(m.leaves, id)
	return true, nil
}

func (m *memLeaveRepository) SumDaysByStatus(ctx context.Context, filter scope.Filter) ([]leave.StatusTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byStatus := map[domain.Status]*leave.StatusTotal{}
	for _, l := range m.leaves {
		l = m.withOwner(l)
		if !filter.Allows(l.Owner()) {
			continue
		}
		t, ok := byStatus[l.Status]
		if !ok {
			t = &leave.StatusTotal{Status: l.Status}
			byStatus[l.Status] = t
		}
		t.Days += l.TotalDays
		t.Count++
	}
	var out []leave.StatusTotal
	for _, t := range byStatus {
		out = append(out, *t)
	}
	return out, nil
}

// memBalances applies Debit as a compare-and-decrement under one lock, the
// same contract as the conditional UPDATE.
type memBalances struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*balance.LeaveBalance
	created int
}

func newMemBalances() *memBalances {
	return &memBalances{rows: map[uuid.UUID]*balance.LeaveBalance{}}
}

func (m *memBalances) set(employeeID uuid.UUID, c balance.Category, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[employeeID]
	if !ok {
		nb := balance.DefaultPolicy.NewBalance(employeeID)
		b = &nb
		m.rows[employeeID] = b
	}
	*counter(b, c) = v
}

func (m *memBalances) remaining(employeeID uuid.UUID, c balance.Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[employeeID]
	if !ok {
		return -1
	}
	return b.Remaining(c)
}

func counter(b *balance.LeaveBalance, c balance.Category) *int {
	switch c {
	case balance.CategorySick:
		return &b.SickLeave
	case balance.CategoryCasual:
		return &b.CasualLeave
	case balance.CategoryAnnual:
		return &b.AnnualLeave
	case balance.CategoryMaternity:
		return &b.MaternityLeave
	default:
		return &b.PaternityLeave
	}
}

func (m *memBalances) WithTx(tx *sql.Tx) balance.Repository { return m }

func (m *memBalances) GetOrCreate(ctx context.Context, employeeID uuid.UUID, policy balance.Policy) (*balance.LeaveBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[employeeID]
	if !ok {
		nb := policy.NewBalance(employeeID)
		b = &nb
		m.rows[employeeID] = b
		m.created++
	}
	cp := *b
	return &cp, nil
}

func (m *memBalances) FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*balance.LeaveBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[employeeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBalances) Debit(ctx context.Context, employeeID uuid.UUID, c balance.Category, days int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[employeeID]
	if !ok {
		return false, nil
	}
	ctr := counter(b, c)
	if *ctr < days {
		return false, nil
	}
	*ctr -= days
	return true, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }
