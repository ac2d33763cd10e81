package ledger

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
)

// Client is the JSON-RPC ledger. The server side registers the same
// struct, filled by auth.PermissionedProxy around a Service.
type Client struct {
	Internal struct {
		Balance          func(ctx context.Context) (uint64, error)                    `perm:"read"`
		Approve          func(ctx context.Context, amount uint64) (uint64, error)     `perm:"write"`
		Transfer         func(ctx context.Context, args TransferArgs) (uint64, error) `perm:"write"`
		DepositPrincipal func(ctx context.Context) (string, error)                    `perm:"read"`
	}
}

var _ API = (*Client)(nil)

// NewClient dials addr, an http(s) or ws(s) URL of the RPC endpoint.
func NewClient(ctx context.Context, addr string, header http.Header) (*Client, jsonrpc.ClientCloser, error) {
	var c Client
	closer, err := jsonrpc.NewMergeClient(ctx, addr, Namespace, []interface{}{&c.Internal}, header)
	if err != nil {
		return nil, nil, err
	}
	return &c, closer, nil
}

func (c *Client) Balance(ctx context.Context) (uint64, error) {
	return c.Internal.Balance(ctx)
}

func (c *Client) Approve(ctx context.Context, amount uint64) (uint64, error) {
	return c.Internal.Approve(ctx, amount)
}

func (c *Client) Transfer(ctx context.Context, args TransferArgs) (uint64, error) {
	return c.Internal.Transfer(ctx, args)
}

func (c *Client) DepositPrincipal(ctx context.Context) (string, error) {
	return c.Internal.DepositPrincipal(ctx)
}
