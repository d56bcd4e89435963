package roster_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"hr-portal/internal/roster"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memRepository struct {
	mu          sync.Mutex
	users       map[string]roster.User
	leaveCounts []roster.StatusCount
	depts       []roster.DepartmentStat
	findCalls   int
	err         error
}

func newMemRepository(users ...roster.User) *memRepository {
	r := &memRepository{users: map[string]roster.User{}}
	for _, u := range users {
		r.users[u.ID.String()] = u
	}
	return r
}

func (r *memRepository) WithTx(*sql.Tx) roster.Repository { return r }

func (r *memRepository) Create(_ context.Context, u *roster.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID.String()] = *u
	return nil
}

func (r *memRepository) FindByID(_ context.Context, id string) (*roster.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memRepository) List(context.Context) ([]roster.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]roster.User, 0, len(r.users))
	for _, u := range r.users {
		if u.ManagerID != nil {
			if m, ok := r.users[u.ManagerID.String()]; ok {
				name := m.Name
				u.ManagerName = &name
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memRepository) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "role":
			u.Role = v.(string)
		case "department":
			u.Department = v.(string)
		case "manager_id":
			u.ManagerID = v.(*uuid.UUID)
		}
	}
	r.users[id] = u
	return nil
}

func (r *memRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *memRepository) CreditSalary(_ context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.String()]
	if !ok {
		return decimal.Decimal{}, gorm.ErrRecordNotFound
	}
	u.SalaryBalance = u.SalaryBalance.Add(amount)
	r.users[id.String()] = u
	return u.SalaryBalance, nil
}

func (r *memRepository) CountByRole(context.Context) ([]roster.RoleCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	out := make([]roster.RoleCount, 0, len(counts))
	for role, n := range counts {
		out = append(out, roster.RoleCount{Role: role, Count: n})
	}
	return out, nil
}

func (r *memRepository) CountLeavesByStatus(context.Context) ([]roster.StatusCount, error) {
	return r.leaveCounts, nil
}

func (r *memRepository) DepartmentStats(context.Context) ([]roster.DepartmentStat, error) {
	return r.depts, r.err
}
