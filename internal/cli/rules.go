package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the normalization rules in the order they run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, n, err := a.setup()
			if err != nil {
				return err
			}
			defer n.Close()

			for i, name := range n.Engine().RuleNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, name)
			}
			return nil
		},
	}
}
