package ledger

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/errors"
)

func TestService_Transfer(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Config{Principal: "alice", Balance: 100})

	tests := []struct {
		name    string
		approve uint64
		args    TransferArgs
		want    uint64
		kind    errors.Kind
	}{
		{"no allowance", 0, TransferArgs{To: "bob", Amount: 10}, 0, errors.KindPermission},
		{"within allowance", 30, TransferArgs{To: "bob", Amount: 10}, 90, ""},
		{"empty recipient", 30, TransferArgs{Amount: 10}, 0, errors.KindInvalidInput},
		{"zero amount", 30, TransferArgs{To: "bob"}, 0, errors.KindInvalidInput},
		{"insufficient funds", 500, TransferArgs{To: "bob", Amount: 200}, 0, errors.KindInvalidInput},
		{"exact balance", 90, TransferArgs{To: "carol", Amount: 90}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Approve(ctx, tt.approve); err != nil {
				t.Fatalf("Approve: %v", err)
			}
			got, err := svc.Transfer(ctx, tt.args)
			if tt.kind != "" {
				if errors.KindOf(err) != tt.kind {
					t.Fatalf("err = %v, want kind %q", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transfer: %v", err)
			}
			if got != tt.want {
				t.Errorf("balance = %d, want %d", got, tt.want)
			}
		})
	}

	if got := svc.Received("bob"); got != 10 {
		t.Errorf("bob received %d, want 10", got)
	}
	if got := svc.Received("carol"); got != 90 {
		t.Errorf("carol received %d, want 90", got)
	}
}

func TestService_DepositPrincipal(t *testing.T) {
	ctx := context.Background()
	a, _ := NewService(Config{Principal: "alice"}).DepositPrincipal(ctx)
	again, _ := NewService(Config{Principal: "alice"}).DepositPrincipal(ctx)
	b, _ := NewService(Config{Principal: "bob"}).DepositPrincipal(ctx)

	if a != again {
		t.Errorf("deposit principal not deterministic: %s vs %s", a, again)
	}
	if a == b {
		t.Error("different principals share a deposit principal")
	}
	if !strings.HasPrefix(a, "0x") || len(a) != 42 {
		t.Errorf("deposit principal %q is not a 20-byte hex address", a)
	}
}

func TestRegister_ThroughBinder(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	reg := actor.NewRegistry()
	if err := Register(reg, NewService(Config{Principal: "alice", Balance: 100})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := reg.Names(); len(got) != 4 {
		t.Fatalf("names = %v", got)
	}

	bal := binder.New(reg, BalanceMethod)
	defer bal.Close()
	approve := binder.New(reg, ApproveMethod)
	defer approve.Close()
	transfer := binder.New(reg, TransferMethod)
	defer transfer.Close()

	if err := approve.Invoke(ctx, 25); err != nil {
		t.Fatal(err)
	}
	if st, _ := approve.Await(ctx); st.Status != binder.StatusSucceeded || st.Result != 25 {
		t.Fatalf("approve: %+v", st)
	}

	if err := transfer.Invoke(ctx, TransferArgs{To: "bob", Amount: 40}); err != nil {
		t.Fatal(err)
	}
	st, _ := transfer.Await(ctx)
	if st.Status != binder.StatusFailed || errors.KindOf(st.Err) != errors.KindRemoteFailed {
		t.Fatalf("over-allowance transfer: %+v", st)
	}

	if err := transfer.Invoke(ctx, TransferArgs{To: "bob", Amount: 25}); err != nil {
		t.Fatal(err)
	}
	if st, _ := transfer.Await(ctx); st.Status != binder.StatusSucceeded || st.Result != 75 {
		t.Fatalf("transfer: %+v", st)
	}

	if err := bal.Invoke(ctx, actor.NoArgs{}); err != nil {
		t.Fatal(err)
	}
	if st, _ := bal.Await(ctx); st.Result != 75 {
		t.Fatalf("balance: %+v", st)
	}
}
