// Package ledger is a small payment actor reachable over JSON-RPC.
//
// Service keeps one account in memory. Handler serves any API under the
// "Ledger" namespace with bearer-token permissions: read operations
// (Balance, DepositPrincipal) are open, write operations (Approve,
// Transfer) need a token granting PermWrite.
//
// On the calling side, Loader dials the endpoint and registers the
// operations so binders can use them:
//
//	p := actor.NewProvider(ledger.Loader("http://127.0.0.1:1234/rpc/v0", nil))
//	b := binder.New(p, ledger.BalanceMethod)
package ledger
