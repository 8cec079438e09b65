package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestFromErrorKeepsTyped(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", Clone(ErrNotActive, "tutor assignment not active"))
	err := FromError(wrapped)
	assert.Equal(t, "NOT_ACTIVE", err.Code)
	assert.Equal(t, "tutor assignment not active", err.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrOverlapConflict, "custom")
	assert.True(t, errors.Is(clone, ErrOverlapConflict))
	assert.False(t, errors.Is(clone, ErrDuplicateSlot))
}

func TestWithDetailsCopies(t *testing.T) {
	detailed := WithDetails(ErrCapacityExceeded, map[string]int{"cap": 120})
	assert.NotNil(t, detailed.Details)
	assert.Nil(t, ErrCapacityExceeded.Details)
}
