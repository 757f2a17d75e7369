package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "pin is malformed", 400)
	expected := "INVALID_INPUT: pin is malformed"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestAppError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, ErrCodeInternal, "failed to store event", 500)

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should contain cause, got: %v", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through the wrapper")
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := NewAppError(ErrCodeConflict, "session full", 409)
	err.WithContext("pin", "ABC123").WithContext("max_listeners", 25)

	if err.Context["pin"] != "ABC123" {
		t.Errorf("Context[pin] = %v, want 'ABC123'", err.Context["pin"])
	}
	if err.Context["max_listeners"] != 25 {
		t.Errorf("Context[max_listeners] = %v, want 25", err.Context["max_listeners"])
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
	}{
		{"invalid input", NewInvalidInputError("bad request"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"not found", NewNotFoundError("license"), ErrCodeNotFound, http.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("bad signature"), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"conflict", NewConflictError("session full"), ErrCodeConflict, http.StatusConflict},
		{"gone", NewGoneError("session expired"), ErrCodeGone, http.StatusGone},
		{"unprocessable", NewUnprocessableError("bad tier"), ErrCodeUnprocessable, http.StatusUnprocessableEntity},
		{"rate limit", NewRateLimitError(), ErrCodeRateLimit, http.StatusTooManyRequests},
		{"internal", NewInternalError("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %v, want %v", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("session")
	if err.Message != "session not found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestGetAppError(t *testing.T) {
	appErr := NewConflictError("duplicate license code")

	if got := GetAppError(appErr); got != appErr {
		t.Errorf("GetAppError(appErr) = %v, want the error itself", got)
	}
	if got := GetAppError(fmt.Errorf("handler: %w", appErr)); got != appErr {
		t.Errorf("GetAppError should unwrap, got %v", got)
	}
	if got := GetAppError(errors.New("plain")); got != nil {
		t.Errorf("GetAppError(plain) = %v, want nil", got)
	}
	if got := GetAppError(nil); got != nil {
		t.Errorf("GetAppError(nil) = %v, want nil", got)
	}
}
