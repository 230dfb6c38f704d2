package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMetrics, "cell size %dx%d", 0, 15)

	if err.Code != ErrCodeInvalidMetrics {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidMetrics)
	}
	if err.Message != "cell size 0x15" {
		t.Errorf("Message = %v, want %v", err.Message, "cell size 0x15")
	}

	expected := "INVALID_METRICS: cell size 0x15"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("toml: line 3: expected '='")
	err := Wrap(ErrCodeInvalidScene, cause, "decode scene")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
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
		{"matching code", New(ErrCodeInvalidConfig, "x"), ErrCodeInvalidConfig, true},
		{"different code", New(ErrCodeInvalidConfig, "x"), ErrCodeInvalidScene, false},
		{"wrapped by fmt", fmt.Errorf("load: %w", New(ErrCodeFileNotFound, "x")), ErrCodeFileNotFound, true},
		{"plain error", errors.New("x"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
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
	if got := GetCode(New(ErrCodeNotFound, "x")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "bad pointer")); got != "bad pointer" {
		t.Errorf("UserMessage() = %q", got)
	}
	wrapped := Wrap(ErrCodeInvalidScene, errors.New("eof"), "decode home.toml")
	if got := UserMessage(wrapped); got != "decode home.toml: eof" {
		t.Errorf("UserMessage(wrapped) = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"about", false},
		{"c0ffee-42", false},
		{"", true},
		{"two words", true},
		{"tab\there", true},
		{"a/b", true},
		{string(make([]byte, 200)), true},
	}
	for _, tt := range tests {
		err := ValidateElementID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidScene) {
			t.Errorf("ValidateElementID(%q) code = %v", tt.id, GetCode(err))
		}
	}
}
