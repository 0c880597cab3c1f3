package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
	}{
		{CodeInvalidTransition, http.StatusUnprocessableEntity, false},
		{CodeConcurrentModification, http.StatusConflict, false},
		{CodeSignatureInvalid, http.StatusBadRequest, false},
		{CodeInsufficientBalance, http.StatusUnprocessableEntity, false},
		{CodeInvalidOTP, http.StatusUnprocessableEntity, false},
		{CodeDeadlineExpired, http.StatusUnprocessableEntity, false},
		{CodeGatewayUnavailable, http.StatusBadGateway, true},
		{CodeNotFound, http.StatusNotFound, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			meta := MetadataFor(tc.code)
			if meta.HTTPStatus != tc.status {
				t.Fatalf("status = %d, want %d", meta.HTTPStatus, tc.status)
			}
			if meta.Retryable != tc.retryable {
				t.Fatalf("retryable = %v, want %v", meta.Retryable, tc.retryable)
			}
		})
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(CodeDependency, cause, "query failed")
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should expose cause via errors.Is")
	}
	if got := err.Error(); got != "DEPENDENCY_ERROR: query failed" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestAsFindsTypedErrorThroughChain(t *testing.T) {
	inner := New(CodeInsufficientBalance, "balance too low")
	wrapped := fmt.Errorf("handler: %w", inner)
	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeInsufficientBalance {
		t.Fatalf("code = %s", typed.Code())
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidOTP, "mismatch"))
	if !HasCode(err, CodeInvalidOTP) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("unexpected code match")
	}
	if HasCode(nil, CodeNotFound) {
		t.Fatal("nil error should not match")
	}
}
