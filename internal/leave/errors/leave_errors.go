package leaveerrors

import (
	"net/http"

	"hr-portal/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of SICK, CASUAL, ANNUAL, MATERNITY, PATERNITY",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date range: start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidReviewStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"you can only cancel your own leave requests",
		http.StatusForbidden,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be cancelled",
		http.StatusConflict,
	)
	ErrLeaveAlreadyReviewed = apperror.New(
		apperror.CodeInvalidState,
		"leave request has already been reviewed",
		http.StatusConflict,
	)
)
