package apperror

import "net/http"

// Shared templates. Feature packages declare their own sentinels under
// internal/<feature>/errors.
var (
	ErrUnauthorized = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)
	ErrNotFound     = New(CodeNotFound, "Resource not found", http.StatusNotFound)
	ErrStorage      = New(CodeStorageError, "storage unavailable, please retry", http.StatusServiceUnavailable)
	ErrInternal     = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
)

func RequiredField(field string) *AppError {
	return New(CodeValidation, field+" is required", http.StatusBadRequest)
}

func InvalidField(field string) *AppError {
	return New(CodeValidation, field+" is invalid", http.StatusBadRequest)
}
