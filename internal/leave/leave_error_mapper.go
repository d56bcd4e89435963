package leave

import (
	"errors"

	leaveerrors "hr-portal/internal/leave/errors"
	"hr-portal/internal/shared/apperror"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return apperror.Storage(err)
}
