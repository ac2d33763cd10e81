package wasmhost

import (
	"context"
	"path"
	"strings"

	"github.com/wippyai/reactor/actor"
)

// Loader returns an actor.Loader that fetches src, instantiates it in a new
// host and registers every export. The provider's release closes the host.
func Loader(cfg *Config, src, witText string) actor.Loader {
	return func(ctx context.Context) (*actor.Registry, func(context.Context) error, error) {
		wasm, err := Fetch(ctx, src)
		if err != nil {
			return nil, nil, err
		}

		h, err := New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		a, err := h.Load(ctx, actorName(src), wasm, witText)
		if err != nil {
			_ = h.Close(ctx)
			return nil, nil, err
		}

		reg := actor.NewRegistry()
		if err := a.Register(reg); err != nil {
			_ = h.Close(ctx)
			return nil, nil, err
		}
		return reg, h.Close, nil
	}
}

func actorName(src string) string {
	if i := strings.IndexAny(src, "?#"); i != -1 {
		src = src[:i]
	}
	return strings.TrimSuffix(path.Base(src), ".wasm")
}
