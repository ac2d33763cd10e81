package main

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/config"
	"github.com/wippyai/reactor/ledger"
)

func ledgerBackend(t *testing.T) *backend {
	t.Helper()
	svc := ledger.NewService(ledger.Config{Principal: "alice", Balance: 100})
	return newBackend("in-memory", func(context.Context) (*actor.Registry, []operation, func(context.Context) error, error) {
		reg, ops, err := ledgerText(svc, nil)
		return reg, ops, nil, err
	})
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// nextState feeds the next binder transition into the model.
func nextState(t *testing.T, m *interactiveModel) stateMsg {
	t.Helper()
	select {
	case msg := <-m.events:
		m.Update(msg)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no state transition delivered")
		return stateMsg{}
	}
}

func loadModel(t *testing.T, b *backend, opts ...binder.Option) *interactiveModel {
	t.Helper()
	m := newInteractiveModel(b, opts...)
	t.Cleanup(m.close)
	m.Update(m.load())
	if m.err != nil {
		t.Fatalf("load: %v", m.err)
	}
	return m
}

func TestInteractive_CallWithoutArgs(t *testing.T) {
	m := loadModel(t, ledgerBackend(t))

	names := make([]string, len(m.ops))
	for i, op := range m.ops {
		names[i] = op.Name
	}
	if got := strings.Join(names, ","); got != "approve,balance,deposit_principal,transfer" {
		t.Fatalf("operations = %s", got)
	}

	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyEnter))
	if m.state != stateShowResult {
		t.Fatalf("state = %v, want result view", m.state)
	}

	if msg := nextState(t, m); msg.state.Status != binder.StatusPending {
		t.Fatalf("first transition = %v", msg.state.Status)
	}
	msg := nextState(t, m)
	if msg.name != "balance" || msg.state.Status != binder.StatusSucceeded || msg.state.Result != "100" {
		t.Fatalf("settled = %+v", msg)
	}
	if view := m.View(); !strings.Contains(view, "100") {
		t.Errorf("view does not show the result:\n%s", view)
	}

	m.Update(key(tea.KeyEsc))
	if m.state != stateSelectFunc {
		t.Errorf("esc did not return to selection")
	}
}

func TestInteractive_CallWithArgs(t *testing.T) {
	m := loadModel(t, ledgerBackend(t))

	// approve is first; it takes one argument.
	m.Update(key(tea.KeyEnter))
	if m.state != stateInputArgs || len(m.inputs) != 1 {
		t.Fatalf("state = %v inputs = %d", m.state, len(m.inputs))
	}
	m.inputs[0].SetValue("not-a-number")
	m.Update(key(tea.KeyEnter))

	nextState(t, m)
	msg := nextState(t, m)
	if msg.state.Status != binder.StatusFailed {
		t.Fatalf("bad argument: %+v", msg.state)
	}
	if view := m.View(); !strings.Contains(view, "Error") {
		t.Errorf("view does not show the error:\n%s", view)
	}

	m.Update(key(tea.KeyEnter))
	m.Update(key(tea.KeyEnter))
	m.inputs[0].SetValue("40")
	m.Update(key(tea.KeyEnter))

	nextState(t, m)
	if msg := nextState(t, m); msg.state.Status != binder.StatusSucceeded || msg.state.Result != "40" {
		t.Fatalf("approve: %+v", msg.state)
	}
}

func TestInteractive_PendingInvocationIgnored(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	b := newBackend("gated", func(context.Context) (*actor.Registry, []operation, func(context.Context) error, error) {
		reg := actor.NewRegistry()
		err := actor.Register(reg, textMethod("slow"), func(ctx context.Context, _ []string) (string, error) {
			calls++
			<-release
			return "done", nil
		})
		return reg, []operation{{Name: "slow", Signature: "slow() -> string"}}, nil, err
	})
	m := loadModel(t, b)

	m.Update(key(tea.KeyEnter))
	nextState(t, m)
	if !strings.Contains(m.View(), "pending") {
		t.Errorf("view does not show pending:\n%s", m.View())
	}

	m.Update(key(tea.KeyEnter))
	m.Update(key(tea.KeyEnter))
	if !strings.Contains(m.notice, "still pending") {
		t.Errorf("notice = %q", m.notice)
	}

	close(release)
	if msg := nextState(t, m); msg.state.Status != binder.StatusSucceeded {
		t.Fatalf("settled = %+v", msg.state)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestInteractive_LoadError(t *testing.T) {
	b := newBackend("broken", func(context.Context) (*actor.Registry, []operation, func(context.Context) error, error) {
		return nil, nil, nil, context.DeadlineExceeded
	})
	m := newInteractiveModel(b)
	defer m.close()

	m.Update(m.load())
	if m.err == nil || !strings.Contains(m.View(), "Error") {
		t.Errorf("load error not shown: %v", m.err)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestOpenBackend(t *testing.T) {
	cfg := config.Default()
	if _, err := openBackend(cfg); err == nil {
		t.Error("expected error without a backend")
	}

	cfg.Backend.RPC = "http://127.0.0.1:1/rpc/v0"
	b, err := openBackend(cfg)
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	if b.label != cfg.Backend.RPC {
		t.Errorf("label = %q", b.label)
	}
}

func TestLedgerText_ArgumentErrors(t *testing.T) {
	reg, _, err := ledgerText(ledger.NewService(ledger.Config{Balance: 10}), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
	}{
		{"balance", []string{"extra"}},
		{"approve", nil},
		{"approve", []string{"-5"}},
		{"transfer", []string{"bob"}},
		{"transfer", []string{"bob", "x"}},
	}
	for _, tt := range tests {
		fn, err := actor.Lookup(reg, textMethod(tt.name))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fn(ctx, tt.args); err == nil {
			t.Errorf("%s%v: expected error", tt.name, tt.args)
		}
	}

	fn, _ := actor.Lookup(reg, textMethod("deposit_principal"))
	if got, err := fn(ctx, nil); err != nil || !strings.HasPrefix(got, "0x") {
		t.Errorf("deposit_principal = %q, %v", got, err)
	}
}
