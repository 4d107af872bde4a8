// Package cli provides the command-line interface for notesync.
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/klauern/notesync/internal/config"
	"github.com/klauern/notesync/internal/logging"
	"github.com/klauern/notesync/internal/ui"
	"github.com/klauern/notesync/internal/util"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "notesync",
		Usage:   "Synchronize project notes with an Obsidian vault",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a configuration file",
			},
			&cli.StringFlag{
				Name:  "project-root",
				Usage: "Project root directory (defaults to the working directory)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return ctx, configureLogging(cmd)
		},
		Commands: []*cli.Command{
			versionCommand(),
			syncCommand(),
			watchCommand(),
			statusCommand(),
			configCommand(),
			backupCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	} else {
		opts.Level = slog.LevelWarn
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

// projectRoot resolves the project root from the flag or working directory.
func projectRoot(cmd *cli.Command) string {
	if root := cmd.String("project-root"); root != "" {
		return util.ExpandPath(root, util.ProjectRoot())
	}
	return util.ProjectRoot()
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig(cmd *cli.Command) (*config.Config, string, error) {
	root := projectRoot(cmd)

	if path := cmd.String("config"); path != "" {
		cfg, err := config.LoadFromPath(root, util.ExpandPath(path, root))
		return cfg, root, err
	}

	cfg, err := config.Load(root)
	return cfg, root, err
}

// applyLoggingConfig re-applies log settings from the loaded config when no
// verbosity flag took precedence.
func applyLoggingConfig(cmd *cli.Command, cfg *config.Config) {
	if cmd.Bool("debug") || cmd.Bool("verbose") {
		return
	}

	opts := logging.DefaultOptions()
	opts.JSON = cfg.Logging.JSON

	switch cfg.Logging.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelWarn
	}

	logging.SetDefault(logging.New(opts))
}
