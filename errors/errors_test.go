package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := Wrap(ErrNoSuchThread, "resume failed")
	err = Wrapf(err, "thread %s", "thread-42")

	assert.True(t, IsNoSuchThread(err))
	assert.False(t, IsNotSuspended(err))
}

func TestNotSuspended(t *testing.T) {
	err := Wrap(ErrNotSuspended, "thread-7 is running")
	assert.True(t, IsNotSuspended(err))
	assert.False(t, IsNoSuchThread(err))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("query field %q is empty", "location")
	require.NotNil(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), `query field "location" is empty`)
}

func TestNewInferenceMalformedError(t *testing.T) {
	err := NewInferenceMalformedError("expected JSON object, got %q", "<html>")
	assert.True(t, IsInferenceMalformed(err))
	assert.False(t, IsValidation(err))
}

func TestHelpersOnNil(t *testing.T) {
	assert.False(t, IsNoSuchThread(nil))
	assert.False(t, IsNotSuspended(nil))
	assert.False(t, IsValidation(nil))
	assert.False(t, IsInferenceMalformed(nil))
}

func TestSourceUnavailableIsDistinct(t *testing.T) {
	err := Wrapf(ErrSourceUnavailable, "naukri page %d", 2)
	assert.True(t, Is(err, ErrSourceUnavailable))
	assert.False(t, IsValidation(err))
}
