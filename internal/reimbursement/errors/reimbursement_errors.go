package reimbursementerrors

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
	ErrInvalidReimbursementID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid reimbursement id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be positive with at most two decimals and at most 9999999999.99",
		http.StatusBadRequest,
	)
	ErrDescriptionRequired = apperror.New(
		apperror.CodeInvalidInput,
		"description is required",
		http.StatusBadRequest,
	)
	ErrCategoryRequired = apperror.New(
		apperror.CodeInvalidInput,
		"category is required",
		http.StatusBadRequest,
	)
	ErrUnknownCategory = apperror.New(
		apperror.CodeInvalidInput,
		"unknown reimbursement category",
		http.StatusBadRequest,
	)
	ErrCategoryInactive = apperror.New(
		apperror.CodeInvalidInput,
		"reimbursement category is no longer active",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date range: to_date must not be before from_date",
		http.StatusBadRequest,
	)
	ErrReceiptRequired = apperror.New(
		apperror.CodeInvalidInput,
		"a receipt is required for this category",
		http.StatusBadRequest,
	)
	ErrReceiptUpload = apperror.New(
		apperror.CodeInvalidInput,
		"receipt upload failed",
		http.StatusBadRequest,
	)
	ErrReceiptTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"request body exceeds the upload size limit",
		http.StatusRequestEntityTooLarge,
	)
	ErrInvalidReviewStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrReimbursementNotFound = apperror.New(
		apperror.CodeNotFound,
		"reimbursement not found",
		http.StatusNotFound,
	)
	ErrAdminOnly = apperror.New(
		apperror.CodeForbidden,
		"only administrators can perform this action",
		http.StatusForbidden,
	)
	ErrReimbursementChanged = apperror.New(
		apperror.CodeInvalidState,
		"reimbursement was changed by another reviewer, reload and retry",
		http.StatusConflict,
	)

	ErrInvalidCategoryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid category id",
		http.StatusBadRequest,
	)
	ErrCategoryNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"category name is required",
		http.StatusBadRequest,
	)
	ErrInvalidMaxLimit = apperror.New(
		apperror.CodeInvalidInput,
		"max_limit must be a number greater than zero",
		http.StatusBadRequest,
	)
	ErrCategoryNotFound = apperror.New(
		apperror.CodeNotFound,
		"reimbursement category not found",
		http.StatusNotFound,
	)
	ErrCategoryAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"reimbursement category already exists",
		http.StatusConflict,
	)
)
