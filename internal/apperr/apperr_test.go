package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not allowed"), http.StatusForbidden},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("already there"), http.StatusConflict},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestMessageRedactsInternals(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", Message(err))
	assert.NotContains(t, Message(err), "connection refused")

	// untyped errors are redacted too
	assert.Equal(t, "internal server error", Message(errors.New("raw detail")))

	// client errors keep their message
	assert.Equal(t, "group not found", Message(NotFound("group not found")))
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Forbidden("only owner"))
	assert.True(t, Is(err, CodeForbidden))
	assert.Equal(t, http.StatusForbidden, Status(err))
	assert.Equal(t, "only owner", Message(err))
}

func TestInternalUnwrapsToCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "boom", "the server-side error string keeps the cause")
}
