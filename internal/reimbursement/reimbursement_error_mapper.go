package reimbursement

import (
	"errors"

	reimbursementerrors "hr-portal/internal/reimbursement/errors"
	"hr-portal/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reimbursementerrors.ErrReimbursementNotFound
	}
	return apperror.Storage(err)
}

func mapCategoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reimbursementerrors.ErrCategoryNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return reimbursementerrors.ErrCategoryAlreadyExists
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return reimbursementerrors.ErrCategoryAlreadyExists
	}
	return apperror.Storage(err)
}
