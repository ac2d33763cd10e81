package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseInvoke,
				Kind:   KindRemoteFailed,
				Method: "balance",
				Detail: "ledger unreachable",
			},
			contains: []string{"[invoke]", "remote_failed", "calling balance", "ledger unreachable"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResolve,
				Kind:  KindNotInitialized,
			},
			contains: []string{"[resolve]", "not_initialized"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase: PhaseInvoke,
				Kind:  KindRemoteFailed,
				Cause: errors.New("network down"),
			},
			contains: []string{"[invoke]", "remote_failed", "caused by", "network down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := RemoteFailed("balance", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseInvoke,
		Kind:   KindRejectedPending,
		Method: "balance",
	}

	if !err.Is(&Error{Phase: PhaseInvoke, Kind: KindRejectedPending}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseResolve, Kind: KindRejectedPending}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseInvoke, Kind: KindClosed}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrRejectedWhilePending) {
		t.Error("errors.Is should match the sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseTransport, KindRemoteFailed).
		Method("approve").
		Value(42).
		Cause(cause).
		Detail("status %d", 503).
		Build()

	if err.Phase != PhaseTransport {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseTransport)
	}
	if err.Kind != KindRemoteFailed {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRemoteFailed)
	}
	if err.Method != "approve" {
		t.Errorf("Method = %v, want approve", err.Method)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "status 503" {
		t.Errorf("Detail = %v, want 'status 503'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err      *Error
		sentinel *Error
		name     string
		kind     Kind
	}{
		{NotInitialized("actor", nil), ErrNotInitialized, "NotInitialized", KindNotInitialized},
		{RejectedWhilePending("balance"), ErrRejectedWhilePending, "RejectedWhilePending", KindRejectedPending},
		{RemoteFailed("balance", errors.New("x")), ErrRemoteFailed, "RemoteFailed", KindRemoteFailed},
		{Closed("balance"), ErrClosed, "Closed", KindClosed},
		{NotFound(PhaseResolve, "method", "balance"), ErrNotFound, "NotFound", KindNotFound},
		{TypeMismatch("balance", "a", "b"), ErrTypeMismatch, "TypeMismatch", KindTypeMismatch},
		{RateLimited("balance"), ErrRateLimited, "RateLimited", KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should match its sentinel", tt.err)
			}
			if KindOf(tt.err) != tt.kind {
				t.Errorf("KindOf = %v, want %v", KindOf(tt.err), tt.kind)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := NotInitialized("actor", nil)
	wrapped := RemoteFailed("balance", inner)

	if KindOf(wrapped) != KindRemoteFailed {
		t.Errorf("KindOf(wrapped) = %v, want outermost kind", KindOf(wrapped))
	}
	if !errors.Is(wrapped, ErrNotInitialized) {
		t.Error("errors.Is should find the wrapped not_initialized error")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf of a plain error should be empty")
	}
}
