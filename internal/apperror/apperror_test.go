package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"cardapio/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("placing order: %w", apperror.NotFound("item %s not found", "abc"))

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "item abc not found", apperror.Message(err))
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.False(t, errors.Is(err, apperror.ErrConflict))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Empty(t, apperror.Message(err))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := apperror.Wrap(apperror.KindConflict, cause, "email already registered")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "email already registered: duplicate key", err.Error())
}
