package actor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/wippyai/reactor/errors"
)

// Limit refuses calls with a rate_limited error when l has no token
// available. A nil limiter disables limiting.
func Limit[A, R any](m Method[A, R], fn Func[A, R], l *rate.Limiter) Func[A, R] {
	if l == nil {
		return fn
	}
	return func(ctx context.Context, args A) (R, error) {
		if !l.Allow() {
			var zero R
			return zero, errors.RateLimited(m.Name())
		}
		return fn(ctx, args)
	}
}

// Throttle waits for a token from l before calling fn. The wait honours ctx.
func Throttle[A, R any](m Method[A, R], fn Func[A, R], l *rate.Limiter) Func[A, R] {
	if l == nil {
		return fn
	}
	return func(ctx context.Context, args A) (R, error) {
		if err := l.Wait(ctx); err != nil {
			var zero R
			return zero, errors.New(errors.PhaseInvoke, errors.KindRateLimited).
				Method(m.Name()).
				Cause(err).
				Build()
		}
		return fn(ctx, args)
	}
}

// Adapt converts fn into a Func over other argument and result types.
// Conversion errors are returned before fn is called.
func Adapt[A, R, B, S any](fn Func[A, R], in func(B) (A, error), out func(R) (S, error)) Func[B, S] {
	return func(ctx context.Context, args B) (S, error) {
		var zero S
		a, err := in(args)
		if err != nil {
			return zero, err
		}
		r, err := fn(ctx, a)
		if err != nil {
			return zero, err
		}
		return out(r)
	}
}
