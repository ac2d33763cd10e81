package ledger

import (
	"context"

	"github.com/filecoin-project/go-jsonrpc/auth"

	"github.com/wippyai/reactor/actor"
)

// Namespace is the JSON-RPC namespace the ledger is served under.
const Namespace = "Ledger"

const (
	PermRead  auth.Permission = "read"
	PermWrite auth.Permission = "write"
)

var (
	AllPermissions = []auth.Permission{PermRead, PermWrite}
	// DefaultPerms apply to callers that present no token.
	DefaultPerms = []auth.Permission{PermRead}
)

// API is implemented by the in-memory Service and by the RPC Client.
type API interface {
	Balance(ctx context.Context) (uint64, error)
	Approve(ctx context.Context, amount uint64) (uint64, error)
	Transfer(ctx context.Context, args TransferArgs) (uint64, error)
	DepositPrincipal(ctx context.Context) (string, error)
}

type TransferArgs struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// Registry identifiers for the ledger operations.
var (
	BalanceMethod          = actor.NewMethod[actor.NoArgs, uint64]("balance")
	ApproveMethod          = actor.NewMethod[uint64, uint64]("approve")
	TransferMethod         = actor.NewMethod[TransferArgs, uint64]("transfer")
	DepositPrincipalMethod = actor.NewMethod[actor.NoArgs, string]("deposit_principal")
)

// Register binds every ledger operation in reg to api.
func Register(reg *actor.Registry, api API) error {
	if err := actor.Register(reg, BalanceMethod, func(ctx context.Context, _ actor.NoArgs) (uint64, error) {
		return api.Balance(ctx)
	}); err != nil {
		return err
	}
	if err := actor.Register(reg, ApproveMethod, api.Approve); err != nil {
		return err
	}
	if err := actor.Register(reg, TransferMethod, api.Transfer); err != nil {
		return err
	}
	return actor.Register(reg, DepositPrincipalMethod, func(ctx context.Context, _ actor.NoArgs) (string, error) {
		return api.DepositPrincipal(ctx)
	})
}
