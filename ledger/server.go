package ledger

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wippyai/reactor/errors"
)

// RPCPath is where Handler mounts the JSON-RPC endpoint.
const RPCPath = "/rpc/v0"

// HandlerOptions configures Handler.
type HandlerOptions struct {
	// Tokens maps bearer tokens to the permissions they grant. Callers
	// without a token get DefaultPerms; an unknown token is rejected.
	Tokens map[string][]auth.Permission

	// Limiter, when set, bounds the request rate across all callers.
	Limiter *rate.Limiter

	// Routes are extra handlers mounted next to the RPC endpoint.
	Routes map[string]http.Handler
}

// Handler serves api over JSON-RPC under Namespace at RPCPath.
func Handler(api API, opts HandlerOptions) http.Handler {
	var proxy Client
	auth.PermissionedProxy(AllPermissions, DefaultPerms, api, &proxy.Internal)

	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(Namespace, &proxy)

	m := mux.NewRouter()
	var rpc http.Handler = rpcServer
	if opts.Limiter != nil {
		rpc = limit(opts.Limiter, rpc)
	}
	m.Handle(RPCPath, rpc)
	for path, h := range opts.Routes {
		m.Handle(path, h)
	}

	return &auth.Handler{
		Verify: verifier(opts.Tokens),
		Next:   m.ServeHTTP,
	}
}

func verifier(tokens map[string][]auth.Permission) func(context.Context, string) ([]auth.Permission, error) {
	return func(ctx context.Context, token string) ([]auth.Permission, error) {
		perms, ok := tokens[token]
		if !ok {
			Logger().Warn("rejected unknown token")
			return nil, errors.Permission("", "unknown token")
		}
		return perms, nil
	}
}

func limit(l *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			Logger().Debug("request rate limited", zap.String("remote", r.RemoteAddr))
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
