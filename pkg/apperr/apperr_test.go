package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(KindAlreadyExists, "relation between %d and %d exists", 1, 2)

	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "relation between 1 and 2 exists", err.Message)
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("accept: %w", New(KindNotFound, "no pending request"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "no pending request", MessageOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "save notification failed")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "disk full", errors.Cause(errors.Unwrap(err)).Error())
	assert.Contains(t, err.Error(), "disk full")
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}

func TestHTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPCode(KindInvalidTarget))
	assert.Equal(t, http.StatusConflict, HTTPCode(KindAlreadyExists))
	assert.Equal(t, http.StatusNotFound, HTTPCode(KindNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPCode(KindUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, HTTPCode(KindInternal))
}
