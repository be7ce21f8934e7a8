package services

import (
	"errors"
	"fmt"

	"github.com/motoqueiros/backend/internal/models"
)

// asPersistence leaves classified errors alone and marks anything else as a
// persistence failure.
func asPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrPersistence, err)
}

func isClassified(err error) bool {
	for _, target := range []error{
		models.ErrNotFound,
		models.ErrValidation,
		models.ErrConflict,
		models.ErrUnauthorized,
		models.ErrForbidden,
		models.ErrPersistence,
		models.ErrReconciliation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
