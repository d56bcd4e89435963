package balance

import (
	"context"
	"errors"

	balanceerrors "hr-portal/internal/balance/errors"
	"hr-portal/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service exposes the ledger outside of a review transaction.
type Service interface {
	// Provision creates the employee's balance if it does not exist yet.
	Provision(ctx context.Context, employeeID string) (*LeaveBalance, error)
	// Snapshot reads the balance without creating it. A missing row is
	// reported as the policy defaults.
	Snapshot(ctx context.Context, employeeID string) (LeaveBalance, error)
	Policy() Policy
}

type service struct {
	repo   Repository
	policy Policy
	logger *zap.Logger
}

func NewService(repo Repository, policy Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	if policy == nil {
		policy = DefaultPolicy
	}
	return &service{repo: repo, policy: policy, logger: l}
}

func (s *service) Policy() Policy { return s.policy }

func (s *service) Provision(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}
	b, err := s.repo.GetOrCreate(ctx, id, s.policy)
	if err != nil {
		s.logger.Error("provision balance failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, apperror.Storage(err)
	}
	s.logger.Debug("balance provisioned", zap.String("employee_id", employeeID))
	return b, nil
}

func (s *service) Snapshot(ctx context.Context, employeeID string) (LeaveBalance, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveBalance{}, balanceerrors.ErrInvalidEmployeeID
	}
	b, err := s.repo.FindByEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			def := s.policy.NewBalance(id)
			def.ID = uuid.Nil
			return def, nil
		}
		s.logger.Error("read balance failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return LeaveBalance{}, apperror.Storage(err)
	}
	return *b, nil
}
