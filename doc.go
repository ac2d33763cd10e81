// Package reactor binds asynchronous remote calls to observable state.
//
// A binder wraps one named remote operation and exposes an invocation
// trigger together with its Call State: whether a call is pending, the last
// successful result and the last error. Observers are notified of every
// transition, in order, exactly once.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	reactor/
//	├── binder/          Call State, invocation protocol, observers
//	├── actor/           Typed operation registry, bootstrap Provider, rate limits
//	├── errors/          Structured error types (phase + kind)
//	├── wasmhost/        WebAssembly core modules as actors (wazero)
//	├── ledger/          JSON-RPC payment actor (server, client, registry binding)
//	├── metrics/         Prometheus observer for binder transitions
//	├── config/          YAML configuration with REACTOR_* overrides
//	└── cmd/reactor/     CLI: list, call, ui, serve
//
// # Quick Start
//
// Bind an operation and watch it settle:
//
//	reg := actor.NewRegistry()
//	if err := ledger.Register(reg, ledger.NewService(ledger.Config{Balance: 100})); err != nil {
//	    log.Fatal(err)
//	}
//
//	b := binder.New(reg, ledger.BalanceMethod)
//	defer b.Close()
//
//	b.Subscribe(func(st binder.State[uint64]) {
//	    fmt.Println(st.Status, st.Result, st.Err)
//	})
//
//	_ = b.Invoke(ctx, actor.NoArgs{})
//	st, _ := b.Await(ctx)
//
// # Invocation Policy
//
// By default a binder ignores invocations while a call is pending and
// reports errors.ErrRejectedWhilePending. With binder.WithPolicy(binder.Supersede)
// the newer call wins and the late result of the earlier one is discarded.
//
// # Bootstrap
//
// When the backend needs loading first (instantiating a module, dialing an
// endpoint) use an actor.Provider. Until it is initialized, invocations
// settle immediately as failed with errors.ErrNotInitialized.
//
// # Error Handling
//
// Errors carry a phase and a kind for matching with errors.Is:
//
//	if errors.Is(st.Err, rerrors.ErrRemoteFailed) {
//	    cause := errors.Unwrap(st.Err)
//	}
package reactor
