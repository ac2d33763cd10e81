package actor

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/wippyai/reactor/errors"
)

// NoArgs is the argument type of operations that take no arguments.
type NoArgs struct{}

// Func is a remote operation bound to Go types.
type Func[A, R any] func(ctx context.Context, args A) (R, error)

// Method is a typed operation identifier. The type parameters pin the
// argument and result types so a lookup can never hand back a Func with
// a different shape.
type Method[A, R any] struct {
	name string
}

// NewMethod declares a typed operation identifier.
func NewMethod[A, R any](name string) Method[A, R] {
	return Method[A, R]{name: name}
}

func (m Method[A, R]) Name() string {
	return m.name
}

// Signature describes m for listings and error messages.
func (m Method[A, R]) Signature() Signature {
	return Signature{
		Name:   m.name,
		Args:   reflect.TypeFor[A](),
		Result: reflect.TypeFor[R](),
	}
}

// Signature is the runtime description of a registered method.
type Signature struct {
	Args   reflect.Type
	Result reflect.Type
	Name   string
}

func (s Signature) String() string {
	return fmt.Sprintf("%s(%s) -> %s", s.Name, typeName(s.Args), typeName(s.Result))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "?"
	}
	if t == reflect.TypeFor[NoArgs]() {
		return ""
	}
	return t.String()
}

type entry struct {
	fn  any
	sig Signature
}

// Registry maps operation identifiers to typed callables.
// It is safe for concurrent use.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register binds fn to m. Each name can be registered once.
func Register[A, R any](r *Registry, m Method[A, R], fn Func[A, R]) error {
	if m.name == "" {
		return errors.Registration("", "empty method name")
	}
	if fn == nil {
		return errors.Registration(m.name, "nil function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[m.name]; ok {
		return errors.Registration(m.name, "already registered as "+existing.sig.String())
	}
	r.entries[m.name] = entry{fn: fn, sig: m.Signature()}
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[A, R any](r *Registry, m Method[A, R], fn Func[A, R]) {
	if err := Register(r, m, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the callable bound to m.
func Lookup[A, R any](r *Registry, m Method[A, R]) (Func[A, R], error) {
	if r == nil {
		return nil, errors.NotInitialized("registry", nil)
	}

	r.mu.RLock()
	e, ok := r.entries[m.name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "method", m.name)
	}
	fn, ok := e.fn.(Func[A, R])
	if !ok {
		return nil, errors.TypeMismatch(m.name, e.sig.String(), m.Signature().String())
	}
	return fn, nil
}

// Names returns the registered method names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signature returns the signature registered under name.
func (r *Registry) Signature(name string) (Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.sig, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Registry implements Resolver; a registry is always resolvable.
func (r *Registry) Registry() (*Registry, error) {
	if r == nil {
		return nil, errors.NotInitialized("registry", nil)
	}
	return r, nil
}

// Resolver is the invoker capability consumed by binders. Implementations
// must not block: a registry that is not available yet is reported with a
// not_initialized error.
type Resolver interface {
	Registry() (*Registry, error)
}

// Resolve looks m up through res.
func Resolve[A, R any](res Resolver, m Method[A, R]) (Func[A, R], error) {
	if res == nil {
		return nil, errors.NotInitialized("resolver", nil)
	}
	reg, err := res.Registry()
	if err != nil {
		return nil, err
	}
	return Lookup(reg, m)
}
