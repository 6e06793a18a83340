package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInsufficientAuthority, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.code), "code %s", tt.code)
	}

	t.Run("unknown codes default to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_NO_SUCH_CODE"))
	})
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("maps domain codes to the wire format", func(t *testing.T) {
		tests := []struct {
			in   string
			want string
		}{
			{"NOT_FOUND", ErrCodeNotFound},
			{"ALREADY_EXISTS", ErrCodeAlreadyExists},
			{"INVALID_STATE", ErrCodeInvalidState},
			{"INSUFFICIENT_AUTHORITY", ErrCodeInsufficientAuthority},
			{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
			{"VALIDATION_ERROR", ErrCodeValidation},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.in), "code %s", tt.in)
		}
	})

	t.Run("passes normalized and unknown codes through", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
		assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
	})
}

func TestNewErrorResponse(t *testing.T) {
	t.Run("normalizes legacy codes in the envelope", func(t *testing.T) {
		resp := NewErrorResponse("INSUFFICIENT_AUTHORITY", "Amount exceeds approval authority")

		require.NotNil(t, resp.Error)
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeInsufficientAuthority, resp.Error.Code)
		assert.False(t, resp.Error.Timestamp.IsZero())
	})

	t.Run("context carries structured detail", func(t *testing.T) {
		resp := NewErrorResponseWithContext(ErrCodeInsufficientAuthority, "over ceiling", "req-1",
			map[string]any{"ceiling": "5000"})

		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		assert.Equal(t, "5000", resp.Error.Context["ceiling"])
	})
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
		{Field: "source_id", Message: "Invalid UUID format"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "source_id", resp.Error.Details[0].Field)
}
