package repositories

import (
	"errors"
	"fmt"

	"cardapio/internal/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// translate converts GORM errors into application errors for entity/id.
// Anything unknown is wrapped and surfaced as an internal error.
func translate(err error, op, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound("%s with ID %s not found", entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(apperror.KindConflict, err, "%s already exists", entity)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.Wrap(apperror.KindConflict, err, "%s is referenced by other records", entity)
	}
	return fmt.Errorf("failed to %s %s: %w", op, entity, err)
}

func newID() string {
	return uuid.New().String()
}
