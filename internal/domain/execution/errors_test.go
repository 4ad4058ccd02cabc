package execution

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	err := &DomainError{Code: ErrCodeNotFound, Message: "program not found"}
	want := "NOT_FOUND: program not found"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}

	wrapped := &DomainError{Code: ErrCodeExecution, Message: "failure", Cause: err}
	wantWrapped := "EXECUTION_ERROR: failure: NOT_FOUND: program not found"
	if wrapped.Error() != wantWrapped {
		t.Fatalf("expected %q, got %q", wantWrapped, wrapped.Error())
	}
}

func TestDomainError_IsAndUnwrap(t *testing.T) {
	inner := &DomainError{Code: ErrCodeInputExhausted, Message: "no input left to read"}
	outer := &DomainError{Code: ErrCodeExecution, Message: "exec", Cause: inner}

	if !errors.Is(outer, inner) {
		t.Fatal("expected errors.Is to match wrapped domain error")
	}
	if errors.Is(inner, outer) {
		t.Fatal("expected errors.Is to be directional")
	}
	if errors.Is(outer, fmt.Errorf("other")) {
		t.Fatal("expected non-domain errors to return false")
	}

	mismatch := &DomainError{Code: ErrCodeInputExhausted, Message: "other"}
	if errors.Is(outer, mismatch) {
		t.Fatal("expected mismatched domain errors to be unequal")
	}
}

func TestDomainError_SentinelsMatchByCode(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &DomainError{Code: ErrCodeUnauthorized, Message: "store rejected credential"})

	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("expected sentinel to match by code")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("expected different code not to match")
	}
}

func TestDomainError_WithContext(t *testing.T) {
	err := &DomainError{Code: ErrCodeNotFound, Message: "missing", Context: map[string]interface{}{"program_id": "42"}}
	updated := err.WithContext(map[string]interface{}{"status": 404})

	if updated.Context["program_id"] != "42" || updated.Context["status"] != 404 {
		t.Fatalf("context merge failed: %+v", updated.Context)
	}
	if updated == err {
		t.Fatal("WithContext should return a new instance")
	}
}

func TestDomainError_NilReceiver(t *testing.T) {
	var err *DomainError
	if got := err.Error(); got != "<nil>" {
		t.Fatalf("expected <nil> string, got %q", got)
	}
	if err.Unwrap() != nil {
		t.Fatal("expected nil unwrap for nil receiver")
	}
	if err.WithContext(map[string]interface{}{"key": "value"}) != nil {
		t.Fatal("expected nil WithContext result for nil receiver")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewInputExhaustedError(2)); got != ErrCodeInputExhausted {
		t.Fatalf("expected INPUT_EXHAUSTED, got %s", got)
	}
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Fatalf("expected INTERNAL_ERROR for plain errors, got %s", got)
	}
}

func TestMessageOf(t *testing.T) {
	engineErr := errors.New("undefined variable x at 1:9")
	if got := MessageOf(NewExecutionError(engineErr)); got != "undefined variable x at 1:9" {
		t.Fatalf("expected engine message, got %q", got)
	}
	if got := MessageOf(NewInputExhaustedError(0)); got != "no input left to read" {
		t.Fatalf("expected domain message, got %q", got)
	}
	if got := MessageOf(errors.New("boom")); got != "boom" {
		t.Fatalf("expected raw message, got %q", got)
	}
	if got := MessageOf(nil); got != "" {
		t.Fatalf("expected empty message for nil, got %q", got)
	}
}
