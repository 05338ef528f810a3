package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rollcall/rollcall-backend/pkg/errors"
)

type sample struct {
	Number string `validate:"required"`
	Start  string `validate:"hhmm"`
	Date   string `validate:"omitempty,ddmmmyyyy"`
	Grace  int    `validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name        string
		input       sample
		wantDetails map[string]string
	}{
		{
			name:  "valid",
			input: sample{Number: "E001", Start: "09:00", Date: "01-Jan-2025"},
		},
		{
			name:  "missing number",
			input: sample{Start: "09:00"},
			wantDetails: map[string]string{
				"Number": "this field is required",
			},
		},
		{
			name:  "bad time and date",
			input: sample{Number: "E001", Start: "9am", Date: "2025-01-01", Grace: -5},
			wantDetails: map[string]string{
				"Start": "must be a time in HH:MM format",
				"Date":  "must be a date in DD-MMM-YYYY format",
				"Grace": "must be greater than or equal to 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantDetails == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Equal(t, tt.wantDetails, appErr.Details)
		})
	}
}
