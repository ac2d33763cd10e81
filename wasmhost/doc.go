// Package wasmhost runs WebAssembly core modules as actors.
//
// A Host owns a wazero runtime. Load compiles and instantiates a module and
// describes its exported functions; Register binds each export into an
// actor.Registry as a Method[Values, Values], so binders can call into the
// module like any other remote operation:
//
//	p := actor.NewProvider(wasmhost.Loader(&wasmhost.Config{}, "ledger.wasm", wit))
//	b := binder.New(p, wasmhost.Method("balance"))
//
// Signatures may be declared in WIT function syntax. Only scalar types are
// supported since core modules have no canonical ABI; declared types are
// checked against the core signature at load time and drive ParseArgs and
// FormatResults.
package wasmhost
