package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/podask/internal/episodes"
	"github.com/forPelevin/podask/internal/pipeline"
	"github.com/forPelevin/podask/internal/types"
	"github.com/forPelevin/podask/internal/usecase"
)

const chatCommands = "/episode [n]  /all  /list  /debug  /quit"

func newChatCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question loop over the loaded episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := e.start(cmd, true)
			if err != nil {
				return err
			}
			s := &chatSession{
				app:   app,
				in:    bufio.NewScanner(cmd.InOrStdin()),
				out:   cmd.OutOrStdout(),
				color: shouldColorize(cmd.OutOrStdout()),
			}
			return s.run(cmd.Context())
		},
	}
}

type chatSession struct {
	app   *pipeline.App
	in    *bufio.Scanner
	out   io.Writer
	color bool

	scope episodes.EpisodeInfo
	debug bool
}

func (s *chatSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Ask anything about the podcast.")
	fmt.Fprintln(s.out, "Commands: "+chatCommands)
	if len(s.app.Episodes) == 1 {
		fmt.Fprintf(s.out, "Loaded: %s\n\n", s.app.Episodes[0].Title)
	} else {
		fmt.Fprintf(s.out, "Loaded: %d episodes\n\n", len(s.app.Episodes))
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, ok := s.prompt("You: ")
		if !ok {
			fmt.Fprintln(s.out, "\nGoodbye!")
			return s.in.Err()
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") || isQuit(line) {
			if s.command(line) {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			continue
		}
		if err := s.ask(ctx, line); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(s.out, paint("error: "+err.Error(), ansiYellow, s.color))
		}
	}
}

func (s *chatSession) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, paint(label, ansiCyan, s.color))
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// command handles one slash command and reports whether the loop should end.
func (s *chatSession) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "/quit", "/exit", "quit", "exit", "q":
		return true
	case "/list":
		s.list()
	case "/episode":
		s.selectEpisode(arg)
	case "/all":
		s.scope = episodes.EpisodeInfo{}
		fmt.Fprintln(s.out, "Now searching all episodes.")
	case "/debug":
		s.debug = !s.debug
		state := "OFF"
		if s.debug {
			state = "ON"
		}
		fmt.Fprintf(s.out, "Debug mode: %s\n", state)
	default:
		fmt.Fprintln(s.out, "Unknown command. Try: "+chatCommands)
	}
	return false
}

func (s *chatSession) list() {
	fmt.Fprintf(s.out, "%d episode(s) in library:\n", len(s.app.Episodes))
	fmt.Fprintln(s.out, episodeTable(s.app.Episodes))
}

// selectEpisode accepts a list number or a source id; with no argument it
// shows the list and reads the choice from the next line.
func (s *chatSession) selectEpisode(arg string) {
	if arg == "" {
		s.list()
		var ok bool
		arg, ok = s.prompt("Enter episode number (or press Enter to search ALL): ")
		if !ok {
			return
		}
	}
	if arg == "" {
		s.scope = episodes.EpisodeInfo{}
		fmt.Fprintln(s.out, "Searching all episodes.")
		return
	}

	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(s.app.Episodes) {
			s.scope = episodes.EpisodeInfo{}
			fmt.Fprintln(s.out, "Invalid number, searching all episodes.")
			return
		}
		s.scope = s.app.Episodes[n-1]
		fmt.Fprintf(s.out, "Now searching: %s\n", s.scope.Title)
		return
	}
	for _, ep := range s.app.Episodes {
		if ep.SourceID == arg {
			s.scope = ep
			fmt.Fprintf(s.out, "Now searching: %s\n", ep.Title)
			return
		}
	}
	fmt.Fprintf(s.out, "No episode with id %q, scope unchanged.\n", arg)
}

func (s *chatSession) ask(ctx context.Context, question string) error {
	where := "all episodes"
	if s.scope.SourceID != "" {
		where = s.scope.Title
	}
	fmt.Fprintf(s.out, "Searching [%s] ...\n", where)

	ans, err := s.app.Usecase.Ask(ctx, usecase.Question{
		Text:  question,
		Scope: types.ScopeFilter{SourceID: s.scope.SourceID},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out)
	printAnswer(s.out, ans, s.debug, s.color)
	fmt.Fprintln(s.out, strings.Repeat("-", 55))
	return nil
}
