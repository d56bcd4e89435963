package rbac

import "hr-portal/internal/domain"

const (
	ResourceLeave         = "leave"
	ResourceReimbursement = "reimbursement"
	ResourceCategory      = "reimbursement_category"
	ResourceRoster        = "roster"

	ActionCreate    = "create"
	ActionRead      = "read"
	ActionCancel    = "cancel"
	ActionReview    = "review"
	ActionReadAll   = "read_all"
	ActionAnalytics = "analytics"
	ActionManage    = "manage"
)

type Permission struct {
	Resource string
	Action   string
}

// Inheritance: Admin > Manager > Employee.
var roleParents = map[domain.Role]domain.Role{
	domain.RoleManager: domain.RoleEmployee,
	domain.RoleAdmin:   domain.RoleManager,
}

// DefaultPolicy lists what each role adds on top of the role it inherits.
// Record-level scope is decided by the scope resolver, not here.
var DefaultPolicy = map[domain.Role][]Permission{
	domain.RoleEmployee: {
		{ResourceLeave, ActionCreate},
		{ResourceLeave, ActionRead},
		{ResourceLeave, ActionCancel},
		{ResourceReimbursement, ActionCreate},
		{ResourceReimbursement, ActionRead},
		{ResourceCategory, ActionRead},
	},
	domain.RoleManager: {
		{ResourceLeave, ActionReview},
		{ResourceReimbursement, ActionReview},
	},
	domain.RoleAdmin: {
		{ResourceReimbursement, ActionReadAll},
		{ResourceReimbursement, ActionAnalytics},
		{ResourceCategory, ActionManage},
		{ResourceRoster, ActionRead},
		{ResourceRoster, ActionManage},
	},
}
