package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_subs_normalize/internal/adapters/server"
	"github.com/baditaflorin/go_subs_normalize/internal/warmup"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the normalizer over HTTP",
		Long: `Start an HTTP server exposing:

  POST /normalize   body is the subscription text, response is the normalized text
                    (?format=json returns the result with rule diagnostics)
  GET  /health      liveness and the active rule list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, lg, n, err := a.setup()
			if err != nil {
				return err
			}
			defer n.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Server.WarmUp {
				wm := warmup.NewManager(lg, warmup.DefaultWarmupConfig())
				wm.RegisterNormalizer(n.Engine())
				wm.WarmUp(ctx)
			}

			srv := server.New(n.Engine(), lg, server.Config{
				Port:           cfg.Server.Port,
				ReadTimeout:    cfg.Server.ReadTimeout,
				WriteTimeout:   cfg.Server.WriteTimeout,
				MaxRequestSize: cfg.Server.MaxRequestSize,
			})
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().Int("port", server.DefaultPort, "HTTP server port")
	bindFlag(a.v, "server.port", cmd.Flags().Lookup("port"))
	return cmd
}
