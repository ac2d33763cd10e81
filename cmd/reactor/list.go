package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the operations the backend exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd.Context(), cmd)
		},
	}
}

func (a *app) runList(ctx context.Context, cmd *cobra.Command) error {
	b, err := openBackend(a.cfg)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	if err := b.Initialize(ctx); err != nil {
		return err
	}

	p := stdoutPainter()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n\n", p.render(titleStyle, "Operations"), b.label)
	for _, op := range b.operations() {
		fmt.Fprintf(out, "  %s  %s\n", p.render(funcStyle, op.Name), p.render(typeStyle, op.Signature))
	}
	return nil
}
