package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/podask/internal/types"
	"github.com/forPelevin/podask/internal/usecase"
)

func newSearchCommand(e *env) *cobra.Command {
	var (
		scope scopeFlags
		kind  string
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Show the excerpts retrieval would cite, without calling the model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := scope.question(args)
			if err != nil {
				return err
			}
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			app, _, err := e.start(cmd, false)
			if err != nil {
				return err
			}

			var results []types.RetrievalResult
			if k == "" {
				results, err = app.Usecase.Retrieve(cmd.Context(), q)
			} else {
				q.Scope.Kind = k
				results, err = app.Usecase.Search(cmd.Context(), q)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, usecase.NoMatches)
				return nil
			}
			fmt.Fprintln(out, excerptTable(results))
			return nil
		},
	}
	scope.register(cmd)
	cmd.Flags().StringVar(&kind, "kind", "", "Only one excerpt kind: header or window (default both, fused)")
	return cmd
}

func parseKind(s string) (types.Kind, error) {
	switch types.Kind(s) {
	case "":
		return "", nil
	case types.KindHeader, types.KindWindow:
		return types.Kind(s), nil
	default:
		return "", fmt.Errorf("--kind must be %q or %q, got %q", types.KindHeader, types.KindWindow, s)
	}
}
