package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hr-portal/internal/domain"
	rostererrors "hr-portal/internal/roster/errors"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"
	"hr-portal/internal/shared/money"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ProfileKeyPrefix = "roster:user:"
	DefaultCacheTTL  = 5 * time.Minute
)

func GetProfileKey(userID string) string {
	return ProfileKeyPrefix + userID
}

type Service interface {
	Lookup(ctx context.Context, id string) (Profile, error)
	ResolvePrincipal(ctx context.Context, userID string) (domain.Principal, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	UpdateUser(ctx context.Context, actor domain.Principal, id string, req UpdateUserRequest) (UserResponse, error)
	DeleteUser(ctx context.Context, actor domain.Principal, id string) error
	CreditSalary(ctx context.Context, actor domain.Principal, id string, amount string) (CreditSalaryResponse, error)
	SystemStats(ctx context.Context) (SystemStatsResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("roster.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("roster.service")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

// Lookup reads a profile through the redis cache. Concurrent misses for the
// same user share one database read.
func (s *service) Lookup(ctx context.Context, id string) (Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Profile{}, rostererrors.ErrInvalidUserID
	}
	cacheKey := GetProfileKey(id)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var p Profile
			if json.Unmarshal([]byte(cached), &p) == nil {
				return p, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log(ctx).Warn("roster cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		u, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		p := u.Profile()

		if s.rdb != nil {
			if data, err := json.Marshal(p); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
					s.log(ctx).Warn("roster cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return p, nil
	})
	if err != nil {
		return Profile{}, mapRepositoryError(err)
	}
	return v.(Profile), nil
}

// ResolvePrincipal refreshes role and department from the roster so a token
// issued before a role change does not keep the old authority.
func (s *service) ResolvePrincipal(ctx context.Context, userID string) (domain.Principal, error) {
	p, err := s.Lookup(ctx, userID)
	if err != nil {
		return domain.Principal{}, err
	}
	role, ok := domain.ParseRole(p.Role)
	if !ok {
		return domain.Principal{}, rostererrors.ErrInvalidRole
	}
	return domain.Principal{ID: p.ID, Role: role, Department: p.Department}, nil
}

func (s *service) invalidate(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetProfileKey(id)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.log(ctx).Error("failed to invalidate roster cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

func (s *service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log(ctx).Error("list users failed", zap.Error(err))
		return nil, apperror.Storage(err)
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) UpdateUser(ctx context.Context, actor domain.Principal, id string, req UpdateUserRequest) (UserResponse, error) {
	log := s.log(ctx)
	log.Debug("update user requested", zap.String("user_id", id), zap.String("actor_id", actor.ID))

	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, rostererrors.ErrInvalidUserID
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return UserResponse{}, rostererrors.ErrNameRequired
		}
		fields["name"] = name
	}
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			return UserResponse{}, rostererrors.ErrInvalidRole
		}
		fields["role"] = string(role)
	}
	if req.Department != nil {
		department := strings.TrimSpace(*req.Department)
		if department == "" {
			return UserResponse{}, rostererrors.ErrDepartmentRequired
		}
		fields["department"] = department
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil {
		if v := strings.TrimSpace(*req.ManagerID); v != "" {
			parsed, err := uuid.Parse(v)
			if err != nil {
				return UserResponse{}, rostererrors.ErrInvalidManagerID
			}
			if parsed.String() == id {
				return UserResponse{}, rostererrors.ErrSelfManager
			}
			managerID = &parsed
		}
		fields["manager_id"] = managerID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update user begin tx failed", zap.Error(err))
		return UserResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if managerID != nil {
		exists, err := qtx.Exists(ctx, managerID.String())
		if err != nil {
			return UserResponse{}, apperror.Storage(err)
		}
		if !exists {
			return UserResponse{}, rostererrors.ErrManagerNotFound
		}
	}

	if len(fields) > 0 {
		if err := qtx.UpdateFields(ctx, id, fields); err != nil {
			return UserResponse{}, mapRepositoryError(err)
		}
	}
	u, err := qtx.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("update user commit failed", zap.Error(err))
		return UserResponse{}, apperror.Storage(err)
	}

	s.invalidate(ctx, id)
	log.Info("update user success", zap.String("user_id", id), zap.Int("fields", len(fields)))
	return mapToResponse(*u), nil
}

func (s *service) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	log := s.log(ctx)
	if _, err := uuid.Parse(id); err != nil {
		return rostererrors.ErrInvalidUserID
	}
	if id == actor.ID {
		return rostererrors.ErrCannotDeleteSelf
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("delete user failed", zap.String("user_id", id), zap.Error(err))
		return apperror.Storage(err)
	}
	if !deleted {
		return rostererrors.ErrUserNotFound
	}

	s.invalidate(ctx, id)
	log.Info("delete user success", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *service) CreditSalary(ctx context.Context, actor domain.Principal, id string, amount string) (CreditSalaryResponse, error) {
	log := s.log(ctx)
	userID, err := uuid.Parse(id)
	if err != nil {
		return CreditSalaryResponse{}, rostererrors.ErrInvalidUserID
	}
	value, err := money.Parse(amount)
	if err != nil {
		return CreditSalaryResponse{}, rostererrors.ErrInvalidAmount
	}

	balance, err := s.repo.CreditSalary(ctx, userID, value)
	if err != nil {
		log.Error("credit salary failed", zap.String("user_id", id), zap.Error(err))
		return CreditSalaryResponse{}, mapRepositoryError(err)
	}

	log.Info("salary credited",
		zap.String("user_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("amount", value.StringFixed(2)),
		zap.String("balance", balance.StringFixed(2)),
	)
	return CreditSalaryResponse{ID: id, Balance: balance.StringFixed(2)}, nil
}

func (s *service) SystemStats(ctx context.Context) (SystemStatsResponse, error) {
	log := s.log(ctx)
	var resp SystemStatsResponse

	roles, err := s.repo.CountByRole(ctx)
	if err != nil {
		log.Error("count users by role failed", zap.Error(err))
		return SystemStatsResponse{}, apperror.Storage(err)
	}
	for _, rc := range roles {
		resp.Users.Total += rc.Count
		switch domain.Role(rc.Role) {
		case domain.RoleEmployee:
			resp.Users.Employees += rc.Count
		case domain.RoleManager:
			resp.Users.Managers += rc.Count
		case domain.RoleAdmin:
			resp.Users.Admins += rc.Count
		}
	}

	statuses, err := s.repo.CountLeavesByStatus(ctx)
	if err != nil {
		log.Error("count leaves by status failed", zap.Error(err))
		return SystemStatsResponse{}, apperror.Storage(err)
	}
	for _, sc := range statuses {
		resp.Leaves.Total += sc.Count
		switch domain.Status(sc.Status) {
		case domain.StatusPending:
			resp.Leaves.Pending += sc.Count
		case domain.StatusApproved:
			resp.Leaves.Approved += sc.Count
		case domain.StatusRejected:
			resp.Leaves.Rejected += sc.Count
		}
	}

	departments, err := s.repo.DepartmentStats(ctx)
	if err != nil {
		log.Error("department stats failed", zap.Error(err))
		return SystemStatsResponse{}, apperror.Storage(err)
	}
	resp.Departments = make([]DepartmentStatResponse, len(departments))
	for i, d := range departments {
		resp.Departments[i] = DepartmentStatResponse{
			Name:      d.Department,
			Total:     d.Total,
			Employees: d.Employees,
			Managers:  d.Managers,
			OnLeave:   d.OnLeave,
		}
	}
	return resp, nil
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Department:    u.Department,
		ManagerName:   u.ManagerName,
		SalaryBalance: u.SalaryBalance.StringFixed(2),
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
	if u.ManagerID != nil {
		v := u.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp
}
