package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidCoordinates, "test message: %s", "value")

	if err.Code != ErrCodeInvalidCoordinates {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidCoordinates)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_COORDINATES: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidCatalog, "test"), ErrCodeInvalidCatalog, true},
		{"different code", New(ErrCodeInvalidCatalog, "test"), ErrCodeNetwork, false},
		{"plain error", errors.New("plain"), ErrCodeNetwork, false},
		{"wrapped structured error", Wrap(ErrCodeTimeout, errors.New("slow"), "query"), ErrCodeTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRateLimited, "slow down")); got != ErrCodeRateLimited {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeRateLimited)
	}
	if got := GetCode(errors.New("plain")); got != Code("") {
		t.Errorf("GetCode for plain error = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidRadius, "radius must be positive")); got != "radius must be positive" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}
