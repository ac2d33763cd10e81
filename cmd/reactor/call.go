package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/errors"
)

func newCallCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "call <method> [args...]",
		Short: "Invoke one operation and print its settled state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return a.runCall(ctx, cmd, args[0], args[1:])
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long (0 waits forever)")
	return cmd
}

func (a *app) runCall(ctx context.Context, cmd *cobra.Command, method string, args []string) error {
	b, err := openBackend(a.cfg)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	if err := b.Initialize(ctx); err != nil {
		return err
	}
	if _, ok := b.operation(method); !ok {
		return errors.NotFound(errors.PhaseResolve, "operation", method)
	}

	bd := binder.New(b, textMethod(method), a.binderOptions()...)
	defer bd.Close()

	unsubscribe := bd.Subscribe(func(st binder.State[string]) {
		a.log.Debug("call state",
			zap.String("method", method),
			zap.Stringer("status", st.Status),
			zap.String("call_id", st.CallID))
	})
	defer unsubscribe()

	if err := bd.Invoke(ctx, args); err != nil {
		return err
	}
	st, err := bd.Await(ctx)
	if err != nil {
		return err
	}

	if st.Status == binder.StatusFailed {
		return st.Err
	}

	p := stdoutPainter()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", p.render(funcStyle, method), p.render(helpStyle, st.Duration().String()))
	fmt.Fprintln(out, p.render(resultStyle, st.Result))
	return nil
}
