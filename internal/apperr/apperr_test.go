package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"access denied", AccessDenied("Access denied"), http.StatusForbidden},
		{"not found", NotFound("Path not found"), http.StatusNotFound},
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", Conflict("Username already exists"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{"forbidden", Forbidden("Forbidden"), http.StatusForbidden},
		{"internal", Internal("boom", errors.New("disk")), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessageHidesCause(t *testing.T) {
	err := Internal("Failed to list directory", errors.New("EIO on /secret/path"))
	assert.Equal(t, "Failed to list directory", Message(err))
	assert.Contains(t, err.Error(), "EIO")
	assert.Equal(t, "Internal server error", Message(errors.New("raw")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Internal("msg", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "not found", KindNotFound.String())
}
