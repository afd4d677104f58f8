package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindMatching(t *testing.T) {
	sentinel := NotFound("no listing found with that id")
	wrapped := fmt.Errorf("listing: load: %w", sentinel)

	require.ErrorIs(t, wrapped, sentinel)
	require.ErrorIs(t, wrapped, ErrNotFound)
	require.NotErrorIs(t, wrapped, ErrValidation)
	assert.Equal(t, ErrNotFound, KindOf(wrapped))

	msg, ok := MessageOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, "no listing found with that id", msg)
}

func TestCauseIsKeptButHiddenFromMessage(t *testing.T) {
	cause := errors.New("card_error: boom")
	err := Provider(cause, "payment provider request failed")

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrProvider)
	assert.Equal(t, "payment provider request failed", err.Message())
	assert.Contains(t, err.Error(), "boom")
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, ErrInternal, KindOf(errors.New("plain")))
	_, ok := MessageOf(errors.New("plain"))
	assert.False(t, ok)
}
