package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_subs_normalize/pkg/subsnorm"
)

// stdinPath selects the streaming mode for a file argument.
const stdinPath = "-"

// runFix normalizes every path, reporting each one. With toStdout the
// results are streamed to standard output and the files stay untouched.
func (a *app) runFix(cmd *cobra.Command, paths []string, toStdout bool) error {
	_, lg, n, err := a.setup()
	if err != nil {
		return err
	}
	defer n.Close()

	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	failed := 0
	var toFix []string
	for _, path := range paths {
		if path != stdinPath && !toStdout {
			toFix = append(toFix, path)
			continue
		}
		if err := a.streamPath(cmd, n, path); err != nil {
			fmt.Fprintf(errOut, "failed to process file: %s: %v\n", path, err)
			failed++
		}
	}

	for _, fr := range n.FixFiles(ctx, toFix) {
		if fr.Err != nil {
			fmt.Fprintf(errOut, "failed to process file: %s: %v\n", fr.Path, fr.Err)
			failed++
			continue
		}
		fmt.Fprintf(out, "processed file: %s\n", fr.Path)
	}

	lg.Debug("Run finished", "files", len(paths), "failed", failed)
	if failed > 0 {
		return errFilesFailed
	}
	return nil
}

func (a *app) streamPath(cmd *cobra.Command, n *subsnorm.Normalizer, path string) error {
	if path == stdinPath {
		_, err := n.Stream(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = n.Stream(cmd.Context(), f, cmd.OutOrStdout())
	return err
}
