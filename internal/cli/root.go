package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/forPelevin/podask/internal/config"
	"github.com/forPelevin/podask/internal/logging"
	"github.com/forPelevin/podask/internal/pipeline"
)

// env carries the persistent flags shared by every subcommand.
type env struct {
	configPath  string
	episodesDir string
	logLevel    string
	logFormat   string
}

func newRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "podask",
		Short:         "Ask questions about podcast episodes from their transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "Configuration file path (default podask.toml)")
	root.PersistentFlags().StringVar(&e.episodesDir, "episodes", "", "Directory containing episode .md files")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&e.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(newAskCommand(e))
	root.AddCommand(newChatCommand(e))
	root.AddCommand(newEpisodesCommand(e))
	root.AddCommand(newSearchCommand(e))
	return root
}

// config loads file and environment settings, then applies flag overrides.
func (e *env) config() (*config.Config, error) {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return nil, err
	}
	if e.episodesDir != "" {
		cfg.Paths.EpisodesDir = e.episodesDir
	}
	if e.logLevel != "" {
		cfg.Logging.Level = e.logLevel
	}
	if e.logFormat != "" {
		cfg.Logging.Format = e.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// start loads the corpus. needKey is set by commands that call the model.
func (e *env) start(cmd *cobra.Command, needKey bool) (*pipeline.App, *slog.Logger, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, nil, err
	}
	if needKey {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, nil, err
		}
	}
	log, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	app, err := pipeline.Start(cmd.Context(), pipeline.FromConfig(cfg, log))
	if err != nil {
		return nil, nil, err
	}
	return app, log, nil
}
