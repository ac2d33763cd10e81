package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // method lookup through a resolver
	PhaseInvoke    Phase = "invoke"    // binder invocation
	PhaseRegister  Phase = "register"  // registry population
	PhaseLoad      Phase = "load"      // backend bootstrap
	PhaseTransport Phase = "transport" // remote transport
	PhaseParse     Phase = "parse"     // argument and WIT parsing
	PhaseConfig    Phase = "config"    // configuration
)

// Kind categorizes the error
type Kind string

const (
	KindNotInitialized  Kind = "not_initialized"
	KindRejectedPending Kind = "rejected_pending"
	KindRemoteFailed    Kind = "remote_failed"
	KindNotFound        Kind = "not_found"
	KindTypeMismatch    Kind = "type_mismatch"
	KindRegistration    Kind = "registration"
	KindRateLimited     Kind = "rate_limited"
	KindClosed          Kind = "closed"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
	KindInstantiation   Kind = "instantiation"
	KindTrap            Kind = "trap"
	KindPermission      Kind = "permission"
)

// Sentinels for errors.Is. Matching uses phase and kind only.
var (
	ErrNotInitialized       = &Error{Phase: PhaseResolve, Kind: KindNotInitialized}
	ErrRejectedWhilePending = &Error{Phase: PhaseInvoke, Kind: KindRejectedPending}
	ErrRemoteFailed         = &Error{Phase: PhaseInvoke, Kind: KindRemoteFailed}
	ErrClosed               = &Error{Phase: PhaseInvoke, Kind: KindClosed}
	ErrNotFound             = &Error{Phase: PhaseResolve, Kind: KindNotFound}
	ErrTypeMismatch         = &Error{Phase: PhaseResolve, Kind: KindTypeMismatch}
	ErrRateLimited          = &Error{Phase: PhaseInvoke, Kind: KindRateLimited}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Method string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Method != "" {
		b.WriteString(" calling ")
		b.WriteString(e.Method)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Method sets the operation name
func (b *Builder) Method(name string) *Builder {
	b.err.Method = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Convenience constructors for common error patterns

// NotInitialized reports that the invoker capability is not resolvable yet
func NotInitialized(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotInitialized,
		Detail: what + " not initialized",
		Cause:  cause,
	}
}

// RejectedWhilePending reports an invocation ignored because a call is in flight
func RejectedWhilePending(method string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindRejectedPending,
		Method: method,
		Detail: "ignored while pending",
	}
}

// RemoteFailed wraps the failure of an invoked operation
func RemoteFailed(method string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindRemoteFailed,
		Method: method,
		Cause:  cause,
	}
}

// Closed reports use of a torn down component
func Closed(method string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindClosed,
		Method: method,
		Detail: "binder closed",
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Method: name,
		Detail: what + " not found",
	}
}

// TypeMismatch reports a method registered with a different signature
func TypeMismatch(method, registered, requested string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindTypeMismatch,
		Method: method,
		Detail: fmt.Sprintf("registered as %s, requested as %s", registered, requested),
	}
}

// Registration creates a registry population error
func Registration(method, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Method: method,
		Detail: detail,
	}
}

// RateLimited reports a call refused by a limiter
func RateLimited(method string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindRateLimited,
		Method: method,
		Detail: "rate limit exceeded",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Load wraps a bootstrap failure
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Instantiation wraps a module instantiation failure
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "failed to instantiate module",
		Cause:  cause,
	}
}

// Trap wraps a guest trap raised while executing method
func Trap(method string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindTrap,
		Method: method,
		Cause:  cause,
	}
}

// Permission reports a caller that is not allowed to run method
func Permission(method, detail string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindPermission,
		Method: method,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
