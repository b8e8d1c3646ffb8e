// Package cli holds the command line interface: the server command plus a
// few maintenance commands that work directly against the database.
package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mrlokans/simplelibrary/internal/config"
	"github.com/mrlokans/simplelibrary/internal/entrypoint"
	"github.com/mrlokans/simplelibrary/internal/logger"
)

type rootOptions struct {
	dbPath  string
	version string
	cfg     *config.Config
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:   "simplelibrary",
		Short: "Small library manager: books, copies and loans",
		Long: `simplelibrary tracks books, their copies and who has borrowed them.

Without a subcommand it starts the web UI and JSON API. Configuration is
read from the environment and an optional .env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg = config.NewConfig()
			if opts.dbPath != "" {
				opts.cfg.Database.Path = opts.dbPath
			}
			logger.Init(opts.cfg.IsDevelopment(), opts.cfg.Global.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.cfg, opts.version)
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")

	root.AddCommand(
		newServeCommand(opts),
		newStatsCommand(opts),
		newOverdueCommand(opts),
		newBooksCommand(opts),
	)
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.cfg, opts.version)
		},
	}
}

// withApp opens the database for a one-shot command and closes it after.
func withApp(opts *rootOptions, fn func(app *entrypoint.App) error) error {
	app, err := entrypoint.NewApp(opts.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()
	return fn(app)
}
