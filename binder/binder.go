package binder

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/errors"
)

// Option configures a Binder.
type Option func(*options)

type options struct {
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	policy Policy
	retain bool
}

// WithPolicy selects what Invoke does while a call is pending.
// The default is RejectWhilePending.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithRetainResult keeps the last successful result visible while a new
// call is pending and after it fails. By default the result is cleared as
// soon as a new invocation starts.
func WithRetainResult(retain bool) Option {
	return func(o *options) { o.retain = retain }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source used for StartedAt and SettledAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type subscription[R any] struct {
	fn     Observer[R]
	active atomic.Bool
}

// delivery is one queued transition with the observers that were
// subscribed when it happened.
type delivery[R any] struct {
	state   State[R]
	settled chan struct{}
	subs    []*subscription[R]
}

// Binder wraps one typed remote operation with observable Call State.
//
// Invoke never blocks on the remote work: the call runs on its own
// goroutine and every transition is queued under the binder's lock, then
// delivered to observers by a single drainer at a time. Observers therefore
// see each transition exactly once and in order, and may call back into the
// binder. Observers must not call Await.
type Binder[A, R any] struct {
	resolver    actor.Resolver
	log         *zap.Logger
	settled     chan struct{}
	undelivered chan struct{}
	method      actor.Method[A, R]
	opts        options
	subs        []*subscription[R]
	queue       []delivery[R]
	state       State[R]
	mu          sync.Mutex
	draining    bool
	closed      bool
}

// New binds method, resolved through resolver on every invocation.
func New[A, R any](resolver actor.Resolver, method actor.Method[A, R], opts ...Option) *Binder[A, R] {
	o := options{
		logger: Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Binder[A, R]{
		resolver: resolver,
		method:   method,
		opts:     o,
		log:      o.logger.With(zap.String("method", method.Name())),
	}
}

func (b *Binder[A, R]) Name() string {
	return b.method.Name()
}

func (b *Binder[A, R]) Method() actor.Method[A, R] {
	return b.method
}

func (b *Binder[A, R]) Policy() Policy {
	return b.opts.policy
}

// State returns a snapshot of the current Call State.
func (b *Binder[A, R]) State() State[R] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Pending reports whether a call is in flight.
func (b *Binder[A, R]) Pending() bool {
	return b.State().Pending()
}

// Invoke starts the operation with args and returns without waiting for it.
//
// While a call is pending the default policy ignores the invocation and
// returns an error matching errors.ErrRejectedWhilePending; Call State is left
// untouched and the operation is not called. If the resolver cannot provide
// the operation (backend not initialized, unknown method) the state moves
// straight to StatusFailed with that error and Invoke returns nil.
// After Close, Invoke returns an error matching errors.ErrClosed.
func (b *Binder[A, R]) Invoke(ctx context.Context, args A) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.Closed(b.method.Name())
	}

	prev := b.state
	if prev.Pending() && b.opts.policy == RejectWhilePending {
		b.mu.Unlock()
		b.log.Debug("invocation ignored while pending", zap.String("call_id", prev.CallID))
		return errors.RejectedWhilePending(b.method.Name())
	}

	now := b.opts.now()
	next := State[R]{
		CallID:    b.opts.newID(),
		Seq:       prev.Seq + 1,
		StartedAt: now,
	}
	if b.opts.retain && prev.HasResult {
		next.Result, next.HasResult = prev.Result, true
	}

	fn, err := actor.Resolve(b.resolver, b.method)
	if err != nil {
		next.Status = StatusFailed
		next.Err = err
		next.SettledAt = now
		b.setLocked(next)
		b.mu.Unlock()

		b.log.Debug("invocation failed to resolve",
			zap.String("call_id", next.CallID),
			zap.Uint64("seq", next.Seq),
			zap.Error(err))
		b.drain()
		return nil
	}

	if prev.Pending() {
		b.log.Debug("superseding pending invocation",
			zap.String("call_id", prev.CallID),
			zap.Uint64("seq", prev.Seq))
	}
	next.Status = StatusPending
	b.setLocked(next)
	b.mu.Unlock()

	go b.run(ctx, fn, args, next.Seq)
	b.drain()
	return nil
}

func (b *Binder[A, R]) run(ctx context.Context, fn actor.Func[A, R], args A, seq uint64) {
	result, err := call(ctx, fn, args)

	b.mu.Lock()
	if b.state.Seq != seq {
		b.mu.Unlock()
		b.log.Debug("discarding superseded result", zap.Uint64("seq", seq))
		return
	}

	next := b.state
	next.SettledAt = b.opts.now()
	if err != nil {
		next.Status = StatusFailed
		next.Err = errors.RemoteFailed(b.method.Name(), err)
		if !b.opts.retain {
			var zero R
			next.Result, next.HasResult = zero, false
		}
	} else {
		next.Status = StatusSucceeded
		next.Result, next.HasResult = result, true
		next.Err = nil
	}
	b.setLocked(next)
	b.mu.Unlock()

	b.log.Debug("invocation settled",
		zap.String("call_id", next.CallID),
		zap.Uint64("seq", next.Seq),
		zap.Stringer("status", next.Status),
		zap.Duration("duration", next.Duration()),
		zap.Error(err))
	b.drain()
}

func call[A, R any](ctx context.Context, fn actor.Func[A, R], args A) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return fn(ctx, args)
}

// setLocked records next and queues its delivery. b.mu must be held.
func (b *Binder[A, R]) setLocked(next State[R]) {
	b.state = next

	d := delivery[R]{state: next, subs: slices.Clone(b.subs)}
	if next.Pending() {
		if b.settled == nil {
			b.settled = make(chan struct{})
		}
	} else if b.settled != nil {
		d.settled = b.settled
		b.undelivered = b.settled
		b.settled = nil
	}
	b.queue = append(b.queue, d)
}

// drain delivers queued transitions unless another goroutine already is.
func (b *Binder[A, R]) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for len(b.queue) > 0 {
		d := b.queue[0]
		b.queue[0] = delivery[R]{}
		b.queue = b.queue[1:]
		b.mu.Unlock()

		for _, s := range d.subs {
			b.deliver(s, d.state)
		}

		b.mu.Lock()
		if d.settled != nil {
			if b.undelivered == d.settled {
				b.undelivered = nil
			}
			close(d.settled)
		}
	}

	b.draining = false
	b.mu.Unlock()
}

func (b *Binder[A, R]) deliver(s *subscription[R], st State[R]) {
	if !s.active.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("observer panicked", zap.Any("panic", r), zap.Uint64("seq", st.Seq))
		}
	}()
	s.fn(st)
}

// Subscribe registers fn for every subsequent transition. The returned
// function unsubscribes; after it returns fn receives no further calls
// from this binder. Subscribing to a closed binder is a no-op.
func (b *Binder[A, R]) Subscribe(fn Observer[R]) (unsubscribe func()) {
	s := &subscription[R]{fn: fn}
	s.active.Store(true)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	return func() {
		if !s.active.Swap(false) {
			return
		}
		b.mu.Lock()
		b.subs = slices.DeleteFunc(b.subs, func(o *subscription[R]) bool { return o == s })
		b.mu.Unlock()
	}
}

// Await blocks until no call is pending and the last settled state has
// been delivered to observers, then returns that state.
func (b *Binder[A, R]) Await(ctx context.Context) (State[R], error) {
	for {
		b.mu.Lock()
		st := b.state
		ch := b.settled
		if ch == nil {
			ch = b.undelivered
		}
		b.mu.Unlock()

		if ch == nil {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Close tears the binder down: observers are dropped and receive nothing
// more. A call in flight runs to completion and still updates State.
func (b *Binder[A, R]) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.closed = true
	b.mu.Unlock()

	for _, s := range subs {
		s.active.Store(false)
	}
}
