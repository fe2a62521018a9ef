package seos

import (
	"errors"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("BRINGUP", ErrCodeBringupFailed, "sensor init failed")

	if err.Op != "BRINGUP" {
		t.Errorf("Expected Op=BRINGUP, got %s", err.Op)
	}
	if err.Code != ErrCodeBringupFailed {
		t.Errorf("Expected Code=ErrCodeBringupFailed, got %s", err.Code)
	}

	expected := "seos: op=BRINGUP: sensor init failed"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestTaskError(t *testing.T) {
	err := NewTaskError("LOAD", 7, ErrCodeDuplicateApp, "already registered")

	if err.Tid != 7 {
		t.Errorf("Expected Tid=7, got %d", err.Tid)
	}

	expected := "seos: op=LOAD tid=7: already registered"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestWrapError(t *testing.T) {
	inner := NewTaskError("SUBSCRIBE", 3, ErrCodeUnknownTarget, "no such tid")
	wrapped := WrapError("DISPATCH", inner)

	if wrapped.Code != ErrCodeUnknownTarget {
		t.Errorf("Expected Code=ErrCodeUnknownTarget, got %s", wrapped.Code)
	}
	if wrapped.Tid != 3 {
		t.Errorf("Expected Tid to carry through wrap, got %d", wrapped.Tid)
	}

	if WrapError("X", nil) != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := NewError("A", ErrCodeQueueFull, "full")
	b := NewError("B", ErrCodeQueueFull, "also full")

	if !errors.Is(a, b) {
		t.Error("errors of the same code should match via errors.Is")
	}

	c := NewError("C", ErrCodeSlabExhausted, "empty")
	if errors.Is(a, c) {
		t.Error("errors of different codes should not match")
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("TEST", ErrCodeInvalidHeader, "bad magic")

	if !IsCode(err, ErrCodeInvalidHeader) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, ErrCodeQueueFull) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, ErrCodeInvalidHeader) {
		t.Error("IsCode should return false for nil error")
	}
}
