package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_subs_normalize/internal/version"
)

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subsnorm %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.BuildTime)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}
