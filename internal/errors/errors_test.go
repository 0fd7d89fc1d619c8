package errors

import (
	"fmt"
	"testing"
)

func TestFlowError_Error(t *testing.T) {
	err := NewNotFound("01ABC")
	want := "NOT_FOUND: record not found: 01ABC"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01ABC")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != "01ABC" {
		t.Errorf("Details[id] = %v, want 01ABC", err.Details["id"])
	}
}

func TestNewDuplicateID(t *testing.T) {
	err := NewDuplicateID("01ABC")
	if err.Code != ErrDuplicateID {
		t.Errorf("Code = %q, want %q", err.Code, ErrDuplicateID)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestNewInternal_WrapsMessage(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}
}

func TestIs(t *testing.T) {
	err := NewInvalidRequest("bad input")
	if !Is(err, ErrInvalidRequest) {
		t.Error("Is(err, ErrInvalidRequest) = false, want true")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is(err, ErrNotFound) = true, want false")
	}
	if Is(fmt.Errorf("plain"), ErrInternal) {
		t.Error("Is(plain error, ErrInternal) = true, want false")
	}
}
