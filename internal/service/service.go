// Package service holds the store's business rules. Every operation validates its input,
// checks the caller's rights, confirms the target exists, applies one change and returns
// a projection that is safe to serialize.
package service

import (
	"errors"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/database"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

// storeError wraps an unexpected persistence failure. It surfaces as a 500.
func storeError(domain, operation string, err error) error {
	return oops.In(domain).Code("STORE_FAILED").With("operation", operation).Wrap(err)
}

// conflictOr translates a unique constraint violation into a ConflictError carrying
// message. Any other error is wrapped as a store failure.
func conflictOr(domain, operation, message string, err error) error {
	if database.IsUniqueViolation(err) {
		return apperror.NewConflict("%s", message)
	}
	return storeError(domain, operation, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// parseID reads a path id. Malformed ids behave as ids of records that do not exist.
func parseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
