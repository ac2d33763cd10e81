package actor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/reactor/errors"
)

// Loader establishes a backend and returns its populated registry together
// with a release function. release may be nil.
type Loader func(ctx context.Context) (reg *Registry, release func(context.Context) error, err error)

// Status reports the bootstrap progress of a Provider.
type Status struct {
	Err         error
	Initialized bool
	Loading     bool
}

// Provider is a Resolver that becomes resolvable once its Loader succeeds.
// Until then Registry reports not_initialized, so binders fail fast instead
// of waiting for the backend.
type Provider struct {
	err     error
	load    Loader
	reg     *Registry
	release func(context.Context) error
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

func NewProvider(load Loader) *Provider {
	return &Provider{load: load}
}

// Initialize runs the loader once. Concurrent callers wait for the same
// attempt; a failed attempt can be retried by calling Initialize again.
func (p *Provider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New(errors.PhaseLoad, errors.KindClosed).Detail("provider closed").Build()
	}
	if p.reg != nil {
		p.mu.Unlock()
		return nil
	}
	if p.done != nil {
		done := p.done
		p.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	}

	done := make(chan struct{})
	p.done = done
	p.err = nil
	p.mu.Unlock()

	reg, release, err := p.load(ctx)
	if err == nil && reg == nil {
		err = errors.Load("loader returned no registry", nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	defer close(done)
	p.done = nil

	if err != nil {
		p.err = err
		Logger().Warn("actor bootstrap failed", zap.Error(err))
		return err
	}
	if p.closed {
		if release != nil {
			_ = release(context.WithoutCancel(ctx))
		}
		return errors.New(errors.PhaseLoad, errors.KindClosed).Detail("provider closed").Build()
	}
	p.reg = reg
	p.release = release
	Logger().Debug("actor initialized", zap.Int("methods", reg.Len()))
	return nil
}

// Start runs Initialize in the background and returns immediately.
func (p *Provider) Start(ctx context.Context) {
	go func() {
		_ = p.Initialize(ctx)
	}()
}

func (p *Provider) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Err:         p.err,
		Initialized: p.reg != nil,
		Loading:     p.done != nil,
	}
}

// Registry implements Resolver.
func (p *Provider) Registry() (*Registry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reg == nil {
		return nil, errors.NotInitialized("actor", p.err)
	}
	return p.reg, nil
}

// Close releases the loaded backend. The provider is unusable afterwards.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	release := p.release
	p.release = nil
	p.reg = nil
	p.closed = true
	p.mu.Unlock()

	if release != nil {
		return release(ctx)
	}
	return nil
}
