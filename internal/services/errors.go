// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/purbeurre/internal/apperrors"
)

// lookupError turns gorm's missing-row error into apperrors.ErrNotFound and
// wraps everything else as a database failure.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, id)
	}
	return fmt.Errorf("failed to load %s %v: %w", resource, id, err)
}
