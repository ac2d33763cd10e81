package wasmhost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/reactor/errors"
)

// maxModuleSize bounds downloads so a misbehaving server cannot exhaust memory.
const maxModuleSize = 256 << 20

// Fetch reads module bytes from a local path or an http(s) URL.
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty module source")
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, errors.Load("read "+src, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTransport, errors.KindInvalidInput, err, "build request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTransport, errors.KindRemoteFailed, err, "fetch "+src)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.PhaseTransport, errors.KindRemoteFailed).
			Value(resp.StatusCode).
			Detail("fetch %s: %s", src, resp.Status).
			Build()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxModuleSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTransport, errors.KindRemoteFailed, err, "read body")
	}
	if len(data) > maxModuleSize {
		return nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("module larger than %d bytes", maxModuleSize))
	}

	Logger().Debug("module fetched", zap.String("url", src), zap.Int("bytes", len(data)))
	return data, nil
}
