// Package scope decides which requests a principal may see and review.
package scope

import (
	"hr-portal/internal/domain"
	scopeerrors "hr-portal/internal/scope/errors"
)

type Kind string

const (
	KindLeave         Kind = "leave"
	KindReimbursement Kind = "reimbursement"
)

// Target is a review attempt: which request kind, whose request, and the
// status transition being asked for.
type Target struct {
	Kind  Kind
	Owner Owner
	From  domain.Status
	To    domain.Status
}

// rolePolicy is implemented once per role variant.
type rolePolicy interface {
	visible(p domain.Principal) Filter
	canReview(p domain.Principal, t Target) error
}

type Resolver struct {
	policies map[domain.Role]rolePolicy
}

func NewResolver() *Resolver {
	return &Resolver{
		policies: map[domain.Role]rolePolicy{
			domain.RoleEmployee: employeePolicy{},
			domain.RoleManager:  managerPolicy{},
			domain.RoleAdmin:    adminPolicy{},
		},
	}
}

// Own is the personal view: requests created by p.
func (r *Resolver) Own(p domain.Principal) Filter {
	if p.ID == "" {
		return Filter{}
	}
	return Filter{OwnerID: p.ID}
}

// VisibleLeaves is the team view for leave requests.
func (r *Resolver) VisibleLeaves(p domain.Principal) Filter {
	return r.visible(p)
}

// VisibleReimbursements is the team view for reimbursement requests.
func (r *Resolver) VisibleReimbursements(p domain.Principal) Filter {
	return r.visible(p)
}

func (r *Resolver) visible(p domain.Principal) Filter {
	policy, ok := r.policies[p.Role]
	if !ok {
		return Filter{}
	}
	return policy.visible(p)
}

// CanView reports whether p may read a single request owned by owner.
func (r *Resolver) CanView(p domain.Principal, owner Owner) error {
	if r.Own(p).Allows(owner) || r.visible(p).Allows(owner) {
		return nil
	}
	return scopeerrors.ErrNotVisible
}

// CanReview returns nil when p may move the target request to t.To.
func (r *Resolver) CanReview(p domain.Principal, t Target) error {
	if p.ID != "" && p.ID == t.Owner.ID {
		return scopeerrors.ErrSelfReview
	}
	policy, ok := r.policies[p.Role]
	if !ok {
		return scopeerrors.ErrUnknownRole
	}
	return policy.canReview(p, t)
}

type employeePolicy struct{}

func (employeePolicy) visible(p domain.Principal) Filter {
	return Filter{OwnerID: p.ID}
}

func (employeePolicy) canReview(domain.Principal, Target) error {
	return scopeerrors.ErrEmployeeCannotReview
}

type managerPolicy struct{}

// A manager's team view excludes their own requests.
func (managerPolicy) visible(p domain.Principal) Filter {
	if p.Department == "" {
		return Filter{}
	}
	return Filter{Department: p.Department, ExcludeOwnerID: p.ID}
}

func (managerPolicy) canReview(p domain.Principal, t Target) error {
	if p.Department == "" || t.Owner.Department != p.Department {
		return scopeerrors.ErrOutOfDepartment
	}
	if t.Kind != KindReimbursement {
		return nil
	}
	if t.Owner.Role == string(domain.RoleManager) {
		return scopeerrors.ErrManagerClaimAdminOnly
	}
	if t.From == domain.StatusRejected && t.To == domain.StatusApproved {
		return scopeerrors.ErrOverrideAdminOnly
	}
	return nil
}

type adminPolicy struct{}

func (adminPolicy) visible(domain.Principal) Filter {
	return Filter{All: true}
}

func (adminPolicy) canReview(domain.Principal, Target) error {
	return nil
}

// CanReviewLeave checks a leave review. Leave requests are only reviewable
// while pending, which the caller validates separately.
func (r *Resolver) CanReviewLeave(p domain.Principal, owner Owner) error {
	return r.CanReview(p, Target{Kind: KindLeave, Owner: owner, From: domain.StatusPending})
}

func (r *Resolver) CanReviewReimbursement(p domain.Principal, owner Owner, from, to domain.Status) error {
	return r.CanReview(p, Target{Kind: KindReimbursement, Owner: owner, From: from, To: to})
}
