package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "employee not found: resource not found", NotFound("employee").Error())
	assert.Equal(t, "plain", New("X", "plain").Error())
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", NotFound("record"), ErrNotFound},
		{"forbidden", Forbidden("no"), ErrForbidden},
		{"bad request", BadRequest("bad"), ErrBadRequest},
		{"conflict", Conflict("dup"), ErrConflict},
		{"internal", Internal("boom"), ErrInternal},
		{"validation", Validation(map[string]string{"f": "x"}), ErrValidation},
		{"unsupported", Unsupported(".csv"), ErrUnsupported},
		{"not confirmed", NotConfirmed("accept all"), ErrNotConfirmed},
		{"wrapped", fmt.Errorf("outer: %w", Forbidden("no")), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.target))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", CodeOf(fmt.Errorf("ctx: %w", Validation(nil))))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain")))

	var appErr *AppError
	assert.True(t, As(Validation(map[string]string{"number": "required"}), &appErr))
	assert.Equal(t, "required", appErr.Details["number"])
}
