package ledger

import (
	"context"
	"net/http"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/errors"
)

// Loader returns an actor.Loader that dials the ledger at addr and binds
// its operations. Releasing the provider closes the connection.
func Loader(addr string, header http.Header) actor.Loader {
	return func(ctx context.Context) (*actor.Registry, func(context.Context) error, error) {
		c, closer, err := NewClient(ctx, addr, header)
		if err != nil {
			return nil, nil, errors.Wrap(errors.PhaseTransport, errors.KindRemoteFailed, err, "dial "+addr)
		}

		reg := actor.NewRegistry()
		if err := Register(reg, c); err != nil {
			closer()
			return nil, nil, err
		}
		return reg, func(context.Context) error {
			closer()
			return nil
		}, nil
	}
}

// BearerHeader returns the request header carrying token, or nil.
func BearerHeader(token string) http.Header {
	if token == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}
