// Package actor provides the invoker capability consumed by binders: a typed
// registry of remote operations and a bootstrap provider.
//
// Operations are declared once as typed identifiers and bound to callables:
//
//	var Balance = actor.NewMethod[actor.NoArgs, uint64]("balance")
//
//	reg := actor.NewRegistry()
//	actor.MustRegister(reg, Balance, func(ctx context.Context, _ actor.NoArgs) (uint64, error) {
//	    return ledger.Balance(ctx)
//	})
//
//	fn, err := actor.Lookup(reg, Balance) // fn is a Func[NoArgs, uint64]
//
// A lookup with the right name but different type parameters fails with a
// type_mismatch error rather than a runtime panic.
//
// # Bootstrap
//
// A Provider wraps a Loader that establishes the backend (instantiates a
// WASM module, dials a JSON-RPC endpoint). Before the loader succeeds the
// provider reports not_initialized from Registry, which binders surface as a
// failed call instead of hanging:
//
//	p := actor.NewProvider(wasmhost.Loader(cfg, "ledger.wasm", ""))
//	p.Start(ctx)             // or p.Initialize(ctx) to block
//	st := p.Status()         // Initialized / Loading / Err
//	defer p.Close(ctx)
//
// Both *Registry and *Provider implement Resolver.
package actor
