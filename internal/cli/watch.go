package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_subs_normalize/internal/adapters/watcher"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Normalize a file now and again every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, lg, n, err := a.setup()
			if err != nil {
				return err
			}
			defer n.Close()

			out := cmd.OutOrStdout()
			fix := func(ctx context.Context, path string) error {
				fr, err := n.FixFile(ctx, path)
				if err != nil {
					return err
				}
				if fr.Written {
					fmt.Fprintf(out, "processed file: %s\n", path)
				}
				return nil
			}

			w, err := watcher.New(args[0], fix, lg, cfg.Watch.Debounce)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
}
