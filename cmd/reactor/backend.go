package main

import (
	"context"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/config"
	"github.com/wippyai/reactor/errors"
	"github.com/wippyai/reactor/ledger"
	"github.com/wippyai/reactor/wasmhost"
)

// Every backend is exposed to the CLI as text operations: arguments as
// typed on the command line, the result rendered for display.
func textMethod(name string) actor.Method[[]string, string] {
	return actor.NewMethod[[]string, string](name)
}

type operation struct {
	Name      string
	Signature string
	Params    []string
}

// backend is a Provider over a text registry plus the operation list the
// loader discovered.
type backend struct {
	*actor.Provider
	label string
	ops   []operation
	mu    sync.Mutex
}

func (b *backend) operations() []operation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ops
}

func (b *backend) operation(name string) (operation, bool) {
	for _, op := range b.operations() {
		if op.Name == name {
			return op, true
		}
	}
	return operation{}, false
}

type textLoader func(ctx context.Context) (*actor.Registry, []operation, func(context.Context) error, error)

func newBackend(label string, load textLoader) *backend {
	b := &backend{label: label}
	b.Provider = actor.NewProvider(func(ctx context.Context) (*actor.Registry, func(context.Context) error, error) {
		reg, ops, release, err := load(ctx)
		if err != nil {
			return nil, nil, err
		}
		b.mu.Lock()
		b.ops = ops
		b.mu.Unlock()
		return reg, release, nil
	})
	return b
}

// openBackend picks the WASM module when configured, the RPC ledger
// otherwise.
func openBackend(cfg *config.Config) (*backend, error) {
	limiter := cfg.ClientLimiter()
	switch {
	case cfg.Backend.Wasm != "":
		return newBackend(cfg.Backend.Wasm, wasmLoader(cfg, limiter)), nil
	case cfg.Backend.RPC != "":
		return newBackend(cfg.Backend.RPC, rpcLoader(cfg, limiter)), nil
	}
	return nil, errors.InvalidInput(errors.PhaseConfig, "no backend configured: set --wasm or --rpc")
}

func wasmLoader(cfg *config.Config, limiter *rate.Limiter) textLoader {
	return func(ctx context.Context) (*actor.Registry, []operation, func(context.Context) error, error) {
		var witText string
		if cfg.Backend.Wit != "" {
			data, err := os.ReadFile(cfg.Backend.Wit)
			if err != nil {
				return nil, nil, nil, errors.Load("read "+cfg.Backend.Wit, err)
			}
			witText = string(data)
		}

		wasm, err := wasmhost.Fetch(ctx, cfg.Backend.Wasm)
		if err != nil {
			return nil, nil, nil, err
		}
		h, err := wasmhost.New(ctx, cfg.WasmHost())
		if err != nil {
			return nil, nil, nil, err
		}
		a, err := h.Load(ctx, strings.TrimSuffix(path.Base(cfg.Backend.Wasm), ".wasm"), wasm, witText)
		if err != nil {
			_ = h.Close(ctx)
			return nil, nil, nil, err
		}

		raw := actor.NewRegistry()
		if err := a.Register(raw); err != nil {
			_ = h.Close(ctx)
			return nil, nil, nil, err
		}

		reg := actor.NewRegistry()
		var ops []operation
		for _, e := range a.Exports() {
			fn, err := actor.Lookup(raw, wasmhost.Method(e.Name))
			if err != nil {
				_ = h.Close(ctx)
				return nil, nil, nil, err
			}
			text := actor.Adapt(fn, e.ParseArgs, func(v wasmhost.Values) (string, error) {
				return strings.Join(e.FormatResults(v), ", "), nil
			})
			m := textMethod(e.Name)
			if err := actor.Register(reg, m, actor.Limit(m, text, limiter)); err != nil {
				_ = h.Close(ctx)
				return nil, nil, nil, err
			}
			ops = append(ops, operation{Name: e.Name, Signature: e.String(), Params: e.ParamLabels()})
		}
		return reg, ops, h.Close, nil
	}
}

func rpcLoader(cfg *config.Config, limiter *rate.Limiter) textLoader {
	return func(ctx context.Context) (*actor.Registry, []operation, func(context.Context) error, error) {
		c, closer, err := ledger.NewClient(ctx, cfg.Backend.RPC, ledger.BearerHeader(cfg.Backend.Token))
		if err != nil {
			return nil, nil, nil, errors.Wrap(errors.PhaseTransport, errors.KindRemoteFailed, err, "dial "+cfg.Backend.RPC)
		}
		reg, ops, err := ledgerText(c, limiter)
		if err != nil {
			closer()
			return nil, nil, nil, err
		}
		return reg, ops, func(context.Context) error {
			closer()
			return nil
		}, nil
	}
}

// ledgerText registers the ledger operations of api as text operations.
func ledgerText(api ledger.API, limiter *rate.Limiter) (*actor.Registry, []operation, error) {
	typed := actor.NewRegistry()
	if err := ledger.Register(typed, api); err != nil {
		return nil, nil, err
	}

	reg := actor.NewRegistry()
	var ops []operation
	add := func(name string, params []string, fn actor.Func[[]string, string]) error {
		m := textMethod(name)
		if err := actor.Register(reg, m, actor.Limit(m, fn, limiter)); err != nil {
			return err
		}
		sig, _ := typed.Signature(name)
		ops = append(ops, operation{Name: name, Signature: sig.String(), Params: params})
		return nil
	}

	balance, err := actor.Lookup(typed, ledger.BalanceMethod)
	if err != nil {
		return nil, nil, err
	}
	approve, err := actor.Lookup(typed, ledger.ApproveMethod)
	if err != nil {
		return nil, nil, err
	}
	transfer, err := actor.Lookup(typed, ledger.TransferMethod)
	if err != nil {
		return nil, nil, err
	}
	deposit, err := actor.Lookup(typed, ledger.DepositPrincipalMethod)
	if err != nil {
		return nil, nil, err
	}

	steps := []struct {
		name   string
		params []string
		fn     actor.Func[[]string, string]
	}{
		{"approve", []string{"amount: u64"}, actor.Adapt(approve, parseAmount, formatUint)},
		{"balance", nil, actor.Adapt(balance, parseNone, formatUint)},
		{"deposit_principal", nil, actor.Adapt(deposit, parseNone, formatString)},
		{"transfer", []string{"to: string", "amount: u64"}, actor.Adapt(transfer, parseTransfer, formatUint)},
	}
	for _, s := range steps {
		if err := add(s.name, s.params, s.fn); err != nil {
			return nil, nil, err
		}
	}
	return reg, ops, nil
}

func argCount(args []string, n int) error {
	if len(args) != n {
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("expected %d arguments, got %d", n, len(args)).
			Build()
	}
	return nil
}

func parseNone(args []string) (actor.NoArgs, error) {
	return actor.NoArgs{}, argCount(args, 0)
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(s).
			Cause(err).
			Detail("amount must be an unsigned integer").
			Build()
	}
	return v, nil
}

func parseAmount(args []string) (uint64, error) {
	if err := argCount(args, 1); err != nil {
		return 0, err
	}
	return parseUint(args[0])
}

func parseTransfer(args []string) (ledger.TransferArgs, error) {
	if err := argCount(args, 2); err != nil {
		return ledger.TransferArgs{}, err
	}
	amount, err := parseUint(args[1])
	if err != nil {
		return ledger.TransferArgs{}, err
	}
	return ledger.TransferArgs{To: strings.TrimSpace(args[0]), Amount: amount}, nil
}

func formatUint(v uint64) (string, error) {
	return strconv.FormatUint(v, 10), nil
}

func formatString(s string) (string, error) {
	return s, nil
}
