package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/podask/internal/types"
	"github.com/forPelevin/podask/internal/usecase"
)

// scopeFlags are shared by ask and search.
type scopeFlags struct {
	source string
	season string
	topK   int
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Restrict to one episode by source (video) id")
	cmd.Flags().StringVar(&f.season, "season", "", "Restrict to one season")
	cmd.Flags().IntVar(&f.topK, "top-k", 0, "Number of excerpts to retrieve (default from config)")
}

func (f *scopeFlags) question(args []string) (usecase.Question, error) {
	if f.topK < 0 {
		return usecase.Question{}, fmt.Errorf("--top-k must be >= 0")
	}
	return usecase.Question{
		Text: strings.Join(args, " "),
		Scope: types.ScopeFilter{
			SourceID: strings.TrimSpace(f.source),
			Season:   strings.TrimSpace(f.season),
		},
		TopK: f.topK,
	}, nil
}

func newAskCommand(e *env) *cobra.Command {
	var (
		scope scopeFlags
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer one question with cited transcript excerpts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := scope.question(args)
			if err != nil {
				return err
			}
			app, _, err := e.start(cmd, true)
			if err != nil {
				return err
			}
			ans, err := app.Usecase.Ask(cmd.Context(), q)
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), ans, debug, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
	scope.register(cmd)
	cmd.Flags().BoolVar(&debug, "debug", false, "Show retrieved excerpts before the answer")
	return cmd
}

func printAnswer(w io.Writer, ans usecase.Answer, debug, color bool) {
	if debug && len(ans.Citations) > 0 {
		fmt.Fprintln(w, paint("Retrieved excerpts:", ansiYellow, color))
		fmt.Fprintln(w, excerptTable(ans.Citations))
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, paint(ans.Text, ansiBold, color))
	if !ans.Found {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, citationTable(ans.Citations))
}
