package scopeerrors

import (
	"net/http"

	"hr-portal/internal/shared/apperror"
)

var (
	ErrSelfReview = apperror.New(
		apperror.CodeForbidden,
		"you cannot review your own request",
		http.StatusForbidden,
	).WithDetails(map[string]string{"reason": "self-review"})
	ErrEmployeeCannotReview = apperror.New(
		apperror.CodeForbidden,
		"employees cannot review requests",
		http.StatusForbidden,
	).WithDetails(map[string]string{"reason": "role"})
	ErrOutOfDepartment = apperror.New(
		apperror.CodeForbidden,
		"you can only manage requests for employees in your department",
		http.StatusForbidden,
	).WithDetails(map[string]string{"reason": "out-of-department"})
	ErrManagerClaimAdminOnly = apperror.New(
		apperror.CodeForbidden,
		"manager requests can only be reviewed by an admin",
		http.StatusForbidden,
	).WithDetails(map[string]string{"reason": "admin-required"})
	ErrOverrideAdminOnly = apperror.New(
		apperror.CodeForbidden,
		"only administrators can approve previously rejected reimbursements",
		http.StatusForbidden,
	).WithDetails(map[string]string{"reason": "admin-required"})
	ErrNotVisible = apperror.New(
		apperror.CodeForbidden,
		"you do not have access to this request",
		http.StatusForbidden,
	).WithDetails(map[string]string{"reason": "out-of-scope"})
	ErrUnknownRole = apperror.New(
		apperror.CodeForbidden,
		"unknown role",
		http.StatusForbidden,
	)
)
