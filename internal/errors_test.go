package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := notFound("session", "s-404")

	if got, want := err.Error(), "unknown session s-404"; got != want {
		t.Errorf("NotFoundError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(NotFoundError, ErrNotFound) = false, want true")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("errors.Is(NotFoundError, ErrValidation) = true, want false")
	}

	wrapped := fmt.Errorf("run: %w", err)
	var target *NotFoundError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As() did not find NotFoundError through wrapping")
	}
	if target.Kind != "session" || target.ID != "s-404" {
		t.Errorf("NotFoundError = %+v, want kind session id s-404", target)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Op: "run cell", Reason: "session s1 is not attached to notebook nb2"}

	if !strings.HasPrefix(err.Error(), "run cell: ") {
		t.Errorf("ValidationError.Error() = %q, want op prefix", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(ValidationError, ErrValidation) = false, want true")
	}
}

func TestPersistenceError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &PersistenceError{Op: "save", Path: "/test/state.json", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "persistence error") {
		t.Errorf("PersistenceError.Error() should contain 'persistence error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/state.json") {
		t.Errorf("PersistenceError.Error() should contain path, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("PersistenceError.Unwrap() should return original error")
	}
	if !errors.Is(err, ErrPersistence) {
		t.Error("errors.Is(PersistenceError, ErrPersistence) = false, want true")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("disk full")
	err := &ExportError{Format: "md", Path: "/tmp/out.md", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") || !strings.Contains(errorMsg, "md") {
		t.Errorf("ExportError.Error() = %q, want format and prefix", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
