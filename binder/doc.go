// Package binder wraps a single asynchronous remote operation with
// observable call state.
//
// A Binder holds one Call State (Idle, Pending, Succeeded, Failed plus the
// last result and error) and exposes an invocation trigger:
//
//	b := binder.New(provider, ledger.BalanceMethod)
//	defer b.Close()
//
//	unsubscribe := b.Subscribe(func(st binder.State[uint64]) {
//	    render(st.Status, st.Result, st.Err)
//	})
//	defer unsubscribe()
//
//	_ = b.Invoke(ctx, actor.NoArgs{}) // returns immediately
//
// # Invocation protocol
//
//  1. While Pending, RejectWhilePending (default) ignores the invocation and
//     returns an error matching errors.ErrRejectedWhilePending. Supersede
//     accepts it and discards the earlier call's outcome.
//  2. The method is resolved through the injected actor.Resolver. A resolver
//     that is not ready yields StatusFailed with a not_initialized error.
//  3. The state moves to Pending and the previous error is cleared.
//  4. On success the result is stored and the state moves to Succeeded.
//  5. On failure the error (kind remote_failed, wrapping the cause) is stored
//     and the state moves to Failed. The previous result survives only with
//     WithRetainResult(true).
//
// Every transition is delivered once, in order, to the observers subscribed
// when it happened. The binder never retries and never cancels: a retry is
// another Invoke, and cancellation goes through the ctx given to Invoke.
package binder
