package rbac

import (
	"sync"

	"hr-portal/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads policy into enforcer. A nil policy means DefaultPolicy.
func NewService(enforcer *casbin.Enforcer, policy map[domain.Role][]Permission, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	if policy == nil {
		policy = DefaultPolicy
	}

	s := &service{enforcer: enforcer, logger: l}
	if err := s.load(policy); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) load(policy map[domain.Role][]Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	for child, parent := range roleParents {
		if _, err := s.enforcer.AddGroupingPolicy(string(child), string(parent)); err != nil {
			return err
		}
	}

	count := 0
	for role, perms := range policy {
		for _, p := range perms {
			if _, err := s.enforcer.AddPolicy(string(role), p.Resource, p.Action); err != nil {
				return err
			}
			count++
		}
	}
	s.logger.Info("rbac policy loaded", zap.Int("permissions", count))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed", zap.Error(err))
		return false, err
	}
	if !allowed {
		s.logger.Debug("rbac denied",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
		)
	}
	return allowed, nil
}
