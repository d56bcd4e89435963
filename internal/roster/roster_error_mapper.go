package roster

import (
	"errors"

	rostererrors "hr-portal/internal/roster/errors"
	"hr-portal/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rostererrors.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_users_email" {
		return rostererrors.ErrEmailAlreadyExists
	}
	// numeric_value_out_of_range: the credited balance no longer fits the column.
	if errors.As(err, &pgErr) && pgErr.Code == "22003" {
		return rostererrors.ErrSalaryBalanceOverflow
	}
	return apperror.Storage(err)
}
