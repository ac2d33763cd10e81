package binder

import (
	"fmt"
	"time"

	"github.com/wippyai/reactor/errors"
)

// Status is the lifecycle position of a binder's current call.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusPending:
		return "Pending"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// State is a snapshot of a binder's Call State.
//
// Result is meaningful only when HasResult is set: always after a success,
// and during Pending or Failed only when the binder retains results.
// Err is set only when Status is StatusFailed.
type State[R any] struct {
	Result    R
	Err       error
	StartedAt time.Time
	SettledAt time.Time
	CallID    string
	Seq       uint64
	Status    Status
	HasResult bool
}

func (s State[R]) Pending() bool {
	return s.Status == StatusPending
}

// Settled reports whether the last accepted invocation has finished.
func (s State[R]) Settled() bool {
	return s.Status == StatusSucceeded || s.Status == StatusFailed
}

// Duration is the time between acceptance and settlement, or zero while
// the call is still pending.
func (s State[R]) Duration() time.Duration {
	if !s.Settled() || s.SettledAt.IsZero() {
		return 0
	}
	return s.SettledAt.Sub(s.StartedAt)
}

// Observer receives every state transition of a binder.
type Observer[R any] func(State[R])

// Policy decides what Invoke does while a call is pending.
type Policy int

const (
	// RejectWhilePending ignores new invocations until the current call
	// settles. Responses are applied in acceptance order.
	RejectWhilePending Policy = iota

	// Supersede accepts a new invocation and stops observing the earlier
	// one. The earlier call still runs to completion; its outcome is
	// discarded, so a stale response never overwrites a newer one.
	Supersede
)

func (p Policy) String() string {
	switch p {
	case RejectWhilePending:
		return "reject"
	case Supersede:
		return "supersede"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts the names produced by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "reject":
		return RejectWhilePending, nil
	case "supersede":
		return Supersede, nil
	}
	return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown policy %q (want reject or supersede)", s))
}
