package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/ledger"
	"github.com/wippyai/reactor/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory ledger over JSON-RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Server.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg.Server
	svc := ledger.NewService(ledger.Config{Principal: cfg.Principal, Balance: cfg.Balance})

	tokens := map[string][]auth.Permission{}
	if cfg.OwnerToken != "" {
		tokens[cfg.OwnerToken] = ledger.AllPermissions
	} else {
		a.log.Warn("no owner token configured; approve and transfer are unavailable")
	}

	routes, closeHealth, err := a.serveRoutes(svc)
	if err != nil {
		return err
	}
	defer closeHealth()

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: ledger.Handler(svc, ledger.HandlerOptions{
			Tokens:  tokens,
			Limiter: a.cfg.ServerLimiter(),
			Routes:  routes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	a.log.Info("ledger listening",
		zap.String("addr", cfg.Listen),
		zap.String("rpc", ledger.RPCPath),
		zap.Bool("metrics", cfg.Metrics))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveRoutes mounts /healthz, which reads the balance through a binder,
// and /metrics when enabled.
func (a *app) serveRoutes(svc *ledger.Service) (map[string]http.Handler, func(), error) {
	reg := actor.NewRegistry()
	if err := ledger.Register(reg, svc); err != nil {
		return nil, nil, err
	}
	probe := binder.New(reg, ledger.BalanceMethod, a.binderOptions()...)
	routes := map[string]http.Handler{"/healthz": healthHandler(probe)}

	if !a.cfg.Server.Metrics {
		return routes, probe.Close, nil
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	col, err := metrics.New(promReg)
	if err != nil {
		probe.Close()
		return nil, nil, err
	}
	unsubscribe := metrics.Observe(col, probe)
	routes["/metrics"] = promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})

	return routes, func() {
		unsubscribe()
		probe.Close()
	}, nil
}

func healthHandler(probe *binder.Binder[actor.NoArgs, uint64]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A probe already in flight is awaited rather than duplicated.
		_ = probe.Invoke(context.Background(), actor.NoArgs{})
		st, err := probe.Await(r.Context())
		if err != nil || st.Status != binder.StatusSucceeded {
			w.WriteHeader(http.StatusServiceUnavailable)
			if st.Err != nil {
				_, _ = w.Write([]byte(st.Err.Error()))
			}
			return
		}
		_, _ = w.Write([]byte("ok balance=" + strconv.FormatUint(st.Result, 10)))
	})
}
