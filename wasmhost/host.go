package wasmhost

import (
	"context"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/reactor/errors"
)

// Config holds configuration for host creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// EnableWASI instantiates wasi_snapshot_preview1 so modules built for
	// WASI can be loaded. Stdio is not connected.
	EnableWASI bool
}

// Host owns a wazero runtime and the actors instantiated in it.
type Host struct {
	runtime wazero.Runtime
	actors  map[string]*Actor
	mu      sync.Mutex
}

// New creates a host. cfg may be nil.
func New(ctx context.Context, cfg *Config) (*Host, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	if cfg != nil && cfg.EnableWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			_ = r.Close(ctx)
			return nil, errors.Load("instantiate WASI", err)
		}
	}

	return &Host{
		runtime: r,
		actors:  make(map[string]*Actor),
	}, nil
}

// Load compiles and instantiates a core module under name.
//
// witText optionally declares the signatures of exports using WIT function
// syntax, one per export:
//
//	balance: func() -> u64;
//	approve: func(amount: u64) -> u64;
//
// Declared types drive argument parsing and result formatting; exports
// without a declaration use their core types.
func (h *Host) Load(ctx context.Context, name string, wasm []byte, witText string) (*Actor, error) {
	if err := checkCoreModule(wasm); err != nil {
		return nil, err
	}

	var sigs map[string]*funcSignature
	if witText != "" {
		var err error
		if sigs, err = parseWitFunctions(witText); err != nil {
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if name != "" {
		if _, exists := h.actors[name]; exists {
			return nil, errors.InvalidInput(errors.PhaseLoad, "actor "+name+" already loaded")
		}
	}

	compiled, err := h.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	exports, err := describeExports(compiled.ExportedFunctions(), sigs)
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	mod, err := h.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(name).WithStartFunctions("_initialize"))
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	a := &Actor{
		name:     name,
		host:     h,
		module:   mod,
		compiled: compiled,
		exports:  exports,
	}
	if name != "" {
		h.actors[name] = a
	}

	Logger().Debug("actor loaded",
		zap.String("actor", name),
		zap.Int("exports", len(exports)))
	return a, nil
}

// Actor returns a loaded actor by name.
func (h *Host) Actor(name string) (*Actor, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.actors[name]
	return a, ok
}

func (h *Host) forget(a *Actor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.actors[a.name] == a {
		delete(h.actors, a.name)
	}
}

// Close releases the runtime and every actor loaded in it.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

func describeExports(defs map[string]api.FunctionDefinition, sigs map[string]*funcSignature) (map[string]Export, error) {
	exports := make(map[string]Export, len(defs))
	for name, def := range defs {
		e := Export{
			Name:       name,
			Params:     def.ParamTypes(),
			Results:    def.ResultTypes(),
			ParamNames: def.ParamNames(),
		}
		if sig, ok := sigs[name]; ok {
			if err := sig.check(e); err != nil {
				return nil, err
			}
			e.WitParams = sig.params
			e.WitResults = sig.results
			if len(sig.paramNames) == len(e.Params) {
				e.ParamNames = sig.paramNames
			}
		}
		exports[name] = e
	}

	for name := range sigs {
		if _, ok := defs[name]; !ok {
			return nil, errors.NotFound(errors.PhaseLoad, "declared export", name)
		}
	}
	return exports, nil
}

func sortedNames(exports map[string]Export) []string {
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkCoreModule rejects anything that is not a version 1 core module.
// Component binaries share the magic but carry a different version/layer.
func checkCoreModule(wasm []byte) error {
	if len(wasm) < 8 || string(wasm[:4]) != "\x00asm" {
		return errors.InvalidInput(errors.PhaseLoad, "not a WebAssembly binary")
	}
	if wasm[4] != 1 || wasm[5] != 0 || wasm[6] != 0 || wasm[7] != 0 {
		return errors.Unsupported(errors.PhaseLoad, "component binaries are not supported; load a core module")
	}
	return nil
}
