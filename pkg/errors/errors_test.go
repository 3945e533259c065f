package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "parking location not found",
			},
			expected: "NOT_FOUND: parking location not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("write conflict")
	appErr := Internal("transaction failed", cause)

	if unwrapped := errors.Unwrap(appErr); unwrapped != cause {
		t.Errorf("Unwrap() should return the wrapped cause")
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "66f2a1")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Details["id"] != "66f2a1" {
		t.Errorf("expected id '66f2a1', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource 'Booking', got %v", err.Details["resource"])
	}
}

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"invalid input", InvalidInput("bad radius"), CodeInvalidInput, http.StatusBadRequest},
		{"validation", Validation("invalid booking", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"conflict", Conflict("location is full"), CodeConflict, http.StatusConflict},
		{"unavailable", Unavailable("Payment provider"), CodeUnavailable, http.StatusServiceUnavailable},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestUnavailableMessage(t *testing.T) {
	err := Unavailable("Payment provider")
	if err.Message != "Payment provider is temporarily unavailable" {
		t.Errorf("expected message to contain service name, got %s", err.Message)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	if result := AsAppError(appErr); result != appErr {
		t.Errorf("AsAppError() should return the same AppError")
	}

	plain := errors.New("plain error")
	result := AsAppError(plain)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap plain errors as internal, got %s", result.Code)
	}
	if result.Err != plain {
		t.Errorf("AsAppError() should keep the original error as cause")
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(Conflict("slot taken"), CodeConflict) {
		t.Errorf("IsCode() should match the conflict code")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Errorf("IsCode() should be false for non-AppError values")
	}
	if IsCode(NotFound("Booking"), CodeConflict) {
		t.Errorf("IsCode() should be false for a different code")
	}
}
