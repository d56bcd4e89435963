package reimbursement_test

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"hr-portal/internal/domain"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/reimbursement"
	"hr-portal/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memRepository struct {
	mu         sync.Mutex
	items      map[string]reimbursement.Reimbursement
	owners     map[uuid.UUID]scope.Owner
	categories *memCategoryRepository

	createErr     error
	forceLostRace bool
}

func newMemRepository(categories *memCategoryRepository) *memRepository {
	return &memRepository{
		items:      map[string]reimbursement.Reimbursement{},
		owners:     map[uuid.UUID]scope.Owner{},
		categories: categories,
	}
}

func (m *memRepository) addOwner(p domain.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[uuid.MustParse(p.ID)] = scope.Owner{ID: p.ID, Role: string(p.Role), Department: p.Department}
}

func (m *memRepository) seed(r reimbursement.Reimbursement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID.String()] = r
}

func (m *memRepository) get(id string) reimbursement.Reimbursement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func (m *memRepository) joined(r reimbursement.Reimbursement) reimbursement.Reimbursement {
	o := m.owners[r.EmployeeID]
	r.OwnerRole = o.Role
	r.OwnerDepartment = o.Department
	if m.categories != nil {
		if c, err := m.categories.FindByName(context.Background(), r.Category); err == nil {
			r.CategoryMaxLimit = c.MaxLimit
		}
	}
	return r
}

func (m *memRepository) WithTx(tx *sql.Tx) reimbursement.Repository { return m }

func (m *memRepository) Create(ctx context.Context, r *reimbursement.Reimbursement) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID.String()] = *r
	return nil
}

func (m *memRepository) FindByID(ctx context.Context, id string) (*reimbursement.Reimbursement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r = m.joined(r)
	return &r, nil
}

func (m *memRepository) List(ctx context.Context, filter scope.Filter) ([]reimbursement.Reimbursement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reimbursement.Reimbursement
	for _, r := range m.items {
		r = m.joined(r)
		if filter.Allows(r.Owner()) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepository) UpdateDecision(ctx context.Context, id string, expected domain.Status, d reimbursement.Decision) (bool, error) {
	if m.forceLostRace {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.Status != expected {
		return false, nil
	}
	r.Status = d.Status
	switch d.RemarkColumn {
	case reimbursement.RemarkColumnManager:
		r.ManagerRemark = d.Remark
	case reimbursement.RemarkColumnAdmin:
		r.AdminRemark = d.Remark
	}
	m.items[id] = r
	return true, nil
}

func (m *memRepository) Overview(ctx context.Context) (reimbursement.AmountOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var o reimbursement.AmountOverview
	for _, r := range m.items {
		o.TotalAmount = o.TotalAmount.Add(r.Amount)
		switch r.Status {
		case domain.StatusApproved:
			o.ApprovedAmount = o.ApprovedAmount.Add(r.Amount)
		case domain.StatusPending:
			o.PendingAmount = o.PendingAmount.Add(r.Amount)
		}
	}
	return o, nil
}

func (m *memRepository) TotalsByCategory(ctx context.Context) ([]reimbursement.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byName := map[string]*reimbursement.CategoryTotal{}
	for _, r := range m.items {
		t, ok := byName[r.Category]
		if !ok {
			t = &reimbursement.CategoryTotal{Category: r.Category, Total: decimal.Zero}
			byName[r.Category] = t
		}
		t.Total = t.Total.Add(r.Amount)
		t.Count++
	}
	out := make([]reimbursement.CategoryTotal, 0, len(byName))
	for _, t := range byName {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

type memCategoryRepository struct {
	mu    sync.Mutex
	items map[string]reimbursement.Category

	saveErr error
}

func newMemCategoryRepository(categories ...reimbursement.Category) *memCategoryRepository {
	m := &memCategoryRepository{items: map[string]reimbursement.Category{}}
	for _, c := range categories {
		m.items[c.ID.String()] = c
	}
	return m
}

func (m *memCategoryRepository) WithTx(tx *sql.Tx) reimbursement.CategoryRepository { return m }

func (m *memCategoryRepository) Create(ctx context.Context, c *reimbursement.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if strings.EqualFold(existing.Name, c.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	m.items[c.ID.String()] = *c
	return nil
}

func (m *memCategoryRepository) Save(ctx context.Context, c *reimbursement.Category) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID.String()] = *c
	return nil
}

func (m *memCategoryRepository) FindByID(ctx context.Context, id string) (*reimbursement.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *memCategoryRepository) FindByName(ctx context.Context, name string) (*reimbursement.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCategoryRepository) List(ctx context.Context, activeOnly bool) ([]reimbursement.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reimbursement.Category
	for _, c := range m.items {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
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
