package rostererrors

import (
	"net/http"

	"hr-portal/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be one of Employee, Manager, Admin",
		http.StatusBadRequest,
	)
	ErrNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"name cannot be empty",
		http.StatusBadRequest,
	)
	ErrDepartmentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"department cannot be empty",
		http.StatusBadRequest,
	)
	ErrInvalidManagerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid manager id",
		http.StatusBadRequest,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"a user cannot be their own manager",
		http.StatusBadRequest,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"manager does not exist",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be positive with at most two decimals and at most 9999999999.99",
		http.StatusBadRequest,
	)
	ErrSalaryBalanceOverflow = apperror.New(
		apperror.CodeInvalidInput,
		"credit would exceed the maximum salary balance",
		http.StatusBadRequest,
	)
	ErrCannotDeleteSelf = apperror.New(
		apperror.CodeInvalidState,
		"administrators cannot delete their own account",
		http.StatusConflict,
	)
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"email already registered",
		http.StatusConflict,
	)
)
