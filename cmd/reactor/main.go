// Command reactor calls remote operations through state binders.
//
//	reactor list --wasm ledger.wasm --wit ledger.wit
//	reactor call balance --rpc http://127.0.0.1:1234/rpc/v0
//	reactor ui --wasm ledger.wasm
//	reactor serve --config reactor.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/reactor/actor"
	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/config"
	"github.com/wippyai/reactor/ledger"
	"github.com/wippyai/reactor/wasmhost"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg *config.Config
	log *zap.Logger

	configPath string
	logLevel   string
	wasm       string
	wit        string
	rpc        string
	token      string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "reactor",
		Short:         "Call remote operations through observable state binders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.wasm, "wasm", "", "WebAssembly module path or URL")
	pf.StringVar(&a.wit, "wit", "", "WIT file declaring export signatures")
	pf.StringVar(&a.rpc, "rpc", "", "Ledger JSON-RPC endpoint URL")
	pf.StringVar(&a.token, "token", "", "Bearer token for the RPC endpoint")

	root.AddCommand(
		newListCmd(a),
		newCallCmd(a),
		newUICmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("log-level", &cfg.Log.Level, a.logLevel)
	override("wasm", &cfg.Backend.Wasm, a.wasm)
	override("wit", &cfg.Backend.Wit, a.wit)
	override("rpc", &cfg.Backend.RPC, a.rpc)
	override("token", &cfg.Backend.Token, a.token)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	actor.SetLogger(log.Named("actor"))
	binder.SetLogger(log.Named("binder"))
	wasmhost.SetLogger(log.Named("wasmhost"))
	ledger.SetLogger(log.Named("ledger"))

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) binderOptions() []binder.Option {
	opts, err := a.cfg.BinderOptions()
	if err != nil {
		// Validate already rejected bad policies.
		a.log.Warn("ignoring binder config", zap.Error(err))
		return nil
	}
	return opts
}
