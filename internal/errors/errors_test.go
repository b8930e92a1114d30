package errors

import (
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: "object not found",
	}

	expected := "NOT_FOUND: object not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("package_id is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "package_id is required" {
		t.Errorf("Message = %q, want %q", err.Message, "package_id is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("0xabc")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["object_id"] != "0xabc" {
		t.Errorf("Details[object_id] = %v, want %q", err.Details["object_id"], "0xabc")
	}
}

func TestNewNotAPackage(t *testing.T) {
	err := NewNotAPackage("0xabc")

	if err.Code != ErrNotAPackage {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotAPackage)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["object_id"] != "0xabc" {
		t.Errorf("Details[object_id] = %v, want %q", err.Details["object_id"], "0xabc")
	}
}

func TestNewUpstreamUnavailable(t *testing.T) {
	err := NewUpstreamUnavailable("rpc request failed")

	if err.Code != ErrUpstreamUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrUpstreamUnavailable)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
}

func TestNewDecompileFailed(t *testing.T) {
	err := NewDecompileFailed("coin", "exit status 1")

	if err.Code != ErrDecompileFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrDecompileFailed)
	}
	if err.Details["module"] != "coin" {
		t.Errorf("Details[module] = %v, want %q", err.Details["module"], "coin")
	}
	if err.Details["reason"] != "exit status 1" {
		t.Errorf("Details[reason] = %v, want %q", err.Details["reason"], "exit status 1")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("connection reset")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "connection reset" {
			t.Errorf("Message = %q, want %q", err.Message, "connection reset")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "internal error" {
			t.Errorf("Message = %q, want %q", err.Message, "internal error")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("0xabc")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("0xabc")
		if Is(err, ErrUpstreamUnavailable) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for plain error")
		}
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := NewUpstreamUnavailable("rpc down")
		wrapped := fmt.Errorf("package 0xabc: %w", inner)
		if !Is(wrapped, ErrUpstreamUnavailable) {
			t.Error("Is() = false, want true for wrapped error")
		}
		if Is(wrapped, ErrNotFound) {
			t.Error("Is() = true, want false for wrong code on wrapped error")
		}
	})
}
