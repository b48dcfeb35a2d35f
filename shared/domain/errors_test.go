package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError_Unwrap(t *testing.T) {
	err := NewStoreError("statistic topPetitions", context.DeadlineExceeded)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "topPetitions")
}

func TestStoreError_NestedKeepsOps(t *testing.T) {
	inner := NewStoreError("query", errors.New("boom"))
	err := NewStoreError("count petitions", inner)

	var se *StoreError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "count petitions: query", se.Op)
	assert.Nil(t, NewStoreError("noop", nil))
}

func TestInvalidInputError(t *testing.T) {
	err := NewInvalidInput("page", "must be a positive integer")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid page: must be a positive integer", err.Error())
}
