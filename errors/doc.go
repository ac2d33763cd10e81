// Package errors provides structured error types for the reactor module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the operation name, a detail message, the offending value
// and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindRemoteFailed).
//		Method("balance").
//		Cause(io.ErrUnexpectedEOF).
//		Build()
//
// Or use convenience constructors for the binder taxonomy:
//
//	errors.NotInitialized("actor", nil)   // invoker capability not resolvable yet
//	errors.RejectedWhilePending("balance") // invocation ignored while a call is in flight
//	errors.RemoteFailed("balance", cause)  // the remote operation failed
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching with errors.Is compares phase and kind, so the exported sentinels
// (ErrNotInitialized, ErrRejectedWhilePending, ...) match any error of that class.
package errors
