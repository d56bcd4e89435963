package balanceerrors

import (
	"net/http"

	"hr-portal/internal/shared/apperror"
)

var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrUnknownCategory = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave category",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
)

type InsufficientDetails struct {
	Category  string `json:"category"`
	Requested int    `json:"requested"`
	Remaining int    `json:"remaining"`
}

// Insufficient carries the remaining quota so callers can show it.
func Insufficient(category string, requested, remaining int) error {
	return ErrInsufficientBalance.WithDetails(InsufficientDetails{
		Category:  category,
		Requested: requested,
		Remaining: remaining,
	})
}
