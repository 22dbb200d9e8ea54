package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches same code", func(t *testing.T) {
		err := NewDomainError("NOT_FOUND", "employee 999 not found")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", ErrNotFound)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("different code does not match", func(t *testing.T) {
		assert.False(t, errors.Is(ErrInvalidInput, ErrNotFound))
	})
}

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError("INVALID_INPUT", "code is required")
	assert.Equal(t, "code is required", err.Error())
	assert.Equal(t, "INVALID_INPUT", err.Code)
}
