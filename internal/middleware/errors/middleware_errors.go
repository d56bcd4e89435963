package middlewareerrors

import (
	"net/http"

	"hr-portal/internal/shared/apperror"
)

var (
	ErrTokenNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Token expired",
		http.StatusUnauthorized,
	)
	ErrUnknownAccount = apperror.New(
		apperror.CodeUnauthorized,
		"Account no longer exists",
		http.StatusUnauthorized,
	)
	ErrMissingPrincipal = apperror.New(
		apperror.CodeUnauthorized,
		"missing auth context",
		http.StatusUnauthorized,
	)
	ErrRoleNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)
	ErrTooManyRequests = apperror.New(
		apperror.CodeTooManyRequests,
		"Too many requests",
		http.StatusTooManyRequests,
	)
	ErrRequestInFlight = apperror.New(
		apperror.CodeConflict,
		"Your request is still being processed",
		http.StatusConflict,
	)
)
