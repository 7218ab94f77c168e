package service

import (
	"errors"
	"fmt"

	"tripbudget/models"
)

// storeError 已分类的错误原样包装，其余视为持久化失败
func storeError(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrForbidden) ||
		errors.Is(err, models.ErrInternal) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(models.ErrInternal, err))
}
