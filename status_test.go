package luajit

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Status
	}{
		{0, StatusOK},
		{1, StatusYield},
		{2, StatusRuntimeError},
		{3, StatusSyntaxError},
		{4, StatusMemoryError},
		{5, StatusHandlerError},
		{6, StatusFileError},
		{7, StatusUnknown},
		{-3, StatusUnknown},
	}
	for _, tt := range tests {
		if got := statusFromCode(tt.code); got != tt.want {
			t.Errorf("statusFromCode(%d): expected %v, got %v", tt.code, tt.want, got)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Status: StatusRuntimeError, Code: 2, Message: "boom"}, "boom"},
		{&Error{Status: StatusMemoryError, Code: 4}, "memory allocation error"},
		{&Error{Status: StatusUnknown, Code: 99}, "unknown error (status 99)"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestStatusOf(t *testing.T) {
	syntax := &Error{Status: StatusSyntaxError, Code: 3}
	wrapped := fmt.Errorf("luajit: load x: %w", syntax)

	if got := StatusOf(wrapped); got != StatusSyntaxError {
		t.Errorf("expected StatusSyntaxError, got %v", got)
	}
	if !errors.Is(wrapped, StatusSyntaxError) {
		t.Error("expected errors.Is to see through wrapping")
	}
	if errors.Is(wrapped, StatusRuntimeError) {
		t.Error("expected errors.Is to reject another status")
	}
	if got := StatusOf(errors.New("plain")); got != StatusUnknown {
		t.Errorf("expected StatusUnknown for a foreign error, got %v", got)
	}
	if got := StatusOf(StatusFileError); got != StatusFileError {
		t.Errorf("expected a bare Status to classify as itself, got %v", got)
	}
}
