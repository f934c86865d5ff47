package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEpisodesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "episodes",
		Short: "List the loaded episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := e.start(cmd, false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d episode(s), %d excerpts\n", len(app.Episodes), app.Excerpts)
			fmt.Fprintln(out, episodeTable(app.Episodes))
			for _, f := range app.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", f.Name, f.Reason)
			}
			return nil
		},
	}
}
