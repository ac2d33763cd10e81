package wasmhost

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/errors"
)

// Values are raw core WebAssembly values, encoded as by wazero's api package.
type Values []uint64

// Method returns the registry identifier under which Register binds an
// export.
func Method(name string) actor.Method[Values, Values] {
	return actor.NewMethod[Values, Values](name)
}

// Export describes an exported function.
type Export struct {
	Name       string
	ParamNames []string
	Params     []api.ValueType
	Results    []api.ValueType
	WitParams  []wit.Type
	WitResults []wit.Type
}

func (e Export) String() string {
	params := make([]string, len(e.Params))
	for i := range e.Params {
		params[i] = e.paramName(i) + ": " + e.paramType(i)
	}

	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ", "))
	b.WriteByte(')')

	switch len(e.Results) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(e.resultType(0))
	default:
		results := make([]string, len(e.Results))
		for i := range e.Results {
			results[i] = e.resultType(i)
		}
		b.WriteString(" -> (")
		b.WriteString(strings.Join(results, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

func (e Export) paramName(i int) string {
	if i < len(e.ParamNames) && e.ParamNames[i] != "" {
		return e.ParamNames[i]
	}
	return fmt.Sprintf("arg%d", i)
}

func (e Export) paramType(i int) string {
	if i < len(e.WitParams) {
		return TypeName(e.WitParams[i])
	}
	return api.ValueTypeName(e.Params[i])
}

func (e Export) resultType(i int) string {
	if i < len(e.WitResults) {
		return TypeName(e.WitResults[i])
	}
	return api.ValueTypeName(e.Results[i])
}

// ParamLabels returns "name: type" for each parameter.
func (e Export) ParamLabels() []string {
	labels := make([]string, len(e.Params))
	for i := range e.Params {
		labels[i] = e.paramName(i) + ": " + e.paramType(i)
	}
	return labels
}

// Actor is an instantiated module whose exports are callable operations.
// Calls are serialized: a wazero module instance is not safe for
// concurrent use.
type Actor struct {
	host     *Host
	module   api.Module
	compiled wazero.CompiledModule
	exports  map[string]Export
	name     string
	mu       sync.Mutex
}

func (a *Actor) Name() string {
	return a.name
}

// Exports returns the exported functions sorted by name.
func (a *Actor) Exports() []Export {
	names := sortedNames(a.exports)
	out := make([]Export, len(names))
	for i, name := range names {
		out[i] = a.exports[name]
	}
	return out
}

// Export returns the description of one export.
func (a *Actor) Export(name string) (Export, bool) {
	e, ok := a.exports[name]
	return e, ok
}

// Call invokes an export with raw core values.
func (a *Actor) Call(ctx context.Context, name string, args Values) (Values, error) {
	e, ok := a.exports[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseInvoke, "export", name)
	}
	if len(args) != len(e.Params) {
		return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Method(name).
			Detail("expected %d arguments, got %d", len(e.Params), len(args)).
			Build()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	fn := a.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.Closed(name)
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}
	// wazero may reuse the result slice on the next call.
	return append(Values(nil), results...), nil
}

// Register binds every export into reg under Method(export name).
func (a *Actor) Register(reg *actor.Registry) error {
	for _, name := range sortedNames(a.exports) {
		err := actor.Register(reg, Method(name), func(ctx context.Context, args Values) (Values, error) {
			return a.Call(ctx, name, args)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases the module instance.
func (a *Actor) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.host.forget(a)
	err := a.module.Close(ctx)
	_ = a.compiled.Close(ctx)
	return err
}
