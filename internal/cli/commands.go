package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/klauern/notesync/internal/backup"
	"github.com/klauern/notesync/internal/config"
	"github.com/klauern/notesync/internal/notify"
	"github.com/klauern/notesync/internal/progress"
	"github.com/klauern/notesync/internal/resolve"
	"github.com/klauern/notesync/internal/store"
	"github.com/klauern/notesync/internal/sync"
	"github.com/klauern/notesync/internal/ui"
	"github.com/klauern/notesync/internal/watch"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one bidirectional sync pass",
		Description: `Synchronize the local notes directory with the Obsidian vault.

   New notes are copied in both directions; notes changed on both sides
   go through the configured conflict resolution strategy.

   Examples:
     notesync sync
     notesync sync --dry-run
     notesync sync --strategy local_wins`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip the automatic backup before syncing",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Override the conflict resolution strategy",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			engine, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			report, err := engine.Run(ctx)
			if err != nil {
				fmt.Println(ui.StatusError(err.Error()))
				return err
			}

			printReport(report)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Sync repeatedly on an interval until interrupted",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Seconds between passes (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip the automatic backup before each pass",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyLoggingConfig(cmd, cfg)

			engine, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			interval := cfg.Interval()
			if secs := cmd.Int("interval"); secs > 0 {
				interval = time.Duration(secs) * time.Second
			}

			fmt.Printf("Watching every %s, press Ctrl+C to stop\n", interval)

			scheduler := watch.NewScheduler(func(ctx context.Context) error {
				report, err := engine.Run(ctx)
				if err != nil {
					fmt.Println(ui.StatusError(err.Error()))
					return err
				}
				if report.TotalChanged() > 0 || report.HasErrors() {
					printReport(report)
				}
				return nil
			}, interval)

			scheduler.Run(ctx)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show configuration and vault connectivity",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, root, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Println(ui.Header("notesync status"))
			fmt.Printf("  Project root:  %s\n", root)
			fmt.Printf("  Notes dir:     %s\n", cfg.LocalNotesPath(root))
			fmt.Printf("  Vault path:    %s\n", cfg.Obsidian.VaultProjectPath)
			fmt.Printf("  API host:      %s\n", cfg.Obsidian.APIHost)
			fmt.Printf("  Strategy:      %s\n", resolve.ParseStrategy(cfg.Sync.ConflictResolution))
			fmt.Printf("  Interval:      %s\n", cfg.Interval())

			if err := cfg.Validate(); err != nil {
				fmt.Println(ui.StatusWarning(err.Error()))
				return nil
			}

			remote := newObsidian(cfg, false)
			if remote.TestConnection(ctx) {
				fmt.Println(ui.StatusSuccess("vault reachable"))
			} else {
				fmt.Println(ui.StatusError("vault unreachable"))
			}
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or initialize configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display the effective configuration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, _, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					fmt.Println(ui.Header("Effective configuration"))
					fmt.Printf("  api_host: %s\n", cfg.Obsidian.APIHost)
					fmt.Printf("  vault_project_path: %s\n", cfg.Obsidian.VaultProjectPath)
					fmt.Printf("  local_notes_dir: %s\n", cfg.Obsidian.LocalNotesDir)
					fmt.Printf("  insecure_skip_verify: %v\n", cfg.Obsidian.InsecureSkipVerify)
					fmt.Printf("  conflict_resolution: %s\n", cfg.Sync.ConflictResolution)
					fmt.Printf("  interval_seconds: %d\n", cfg.Sync.IntervalSeconds)
					fmt.Printf("  create_backup: %v\n", cfg.Sync.CreateBackup)
					fmt.Printf("  max_backups: %d\n", cfg.Backup.MaxBackups)
					fmt.Printf("  include_extensions: %v\n", cfg.Filters.IncludeExtensions)
					fmt.Printf("  exclude_patterns: %v\n", cfg.Filters.ExcludePatterns)

					if cfg.Obsidian.APIKey == "" {
						fmt.Println(ui.StatusWarning("OBSIDIAN_API_KEY is not set"))
					} else {
						fmt.Println(ui.StatusSuccess("OBSIDIAN_API_KEY is set"))
					}
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing configuration file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					root := projectRoot(cmd)
					path := config.FilePath(root)

					if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
						return fmt.Errorf("%s already exists (use --force to overwrite)", path)
					}

					cfg := config.Default(root)
					if err := cfg.SaveToPath(path); err != nil {
						return err
					}

					fmt.Println(ui.StatusSuccess("wrote " + path))
					fmt.Println(ui.Dim("Set OBSIDIAN_API_KEY in the environment or a .env file."))
					return nil
				},
			},
		},
	}
}

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Manage snapshots of the local notes directory",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Snapshot the local notes directory now",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, root, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					mgr := backup.NewManager(cfg.LocalNotesPath(root), cfg.BackupRoot(root), true, false)
					path, err := mgr.Create()
					if err != nil {
						return err
					}
					if path == "" {
						fmt.Println(ui.StatusSkipped("nothing to back up"))
						return nil
					}
					fmt.Println(ui.StatusSuccess("created " + path))
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List existing snapshots, newest first",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, root, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					mgr := backup.NewManager(cfg.LocalNotesPath(root), cfg.BackupRoot(root), true, false)
					snapshots, err := mgr.List()
					if err != nil {
						return err
					}
					if len(snapshots) == 0 {
						fmt.Println(ui.Dim("No backups found"))
						return nil
					}

					fmt.Println(ui.Header("Backups"))
					for _, s := range snapshots {
						fmt.Printf("  %s  %s\n", s.Name, ui.Dim(s.ModTime.Format(time.RFC3339)))
					}
					return nil
				},
			},
			{
				Name:  "cleanup",
				Usage: "Remove snapshots beyond the retention limit",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "keep",
						Usage: "Snapshots to keep (overrides config)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, root, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					keep := cfg.Backup.MaxBackups
					if n := cmd.Int("keep"); n > 0 {
						keep = int(n)
					}

					mgr := backup.NewManager(cfg.LocalNotesPath(root), cfg.BackupRoot(root), true, false)
					removed, err := mgr.CleanupOld(keep)
					if err != nil {
						return err
					}
					if len(removed) == 0 {
						fmt.Println(ui.Dim("Nothing to clean up"))
						return nil
					}
					for _, name := range removed {
						fmt.Println(ui.StatusSuccess("removed " + name))
					}
					return nil
				},
			},
		},
	}
}

// buildEngine assembles the sync engine from configuration and flags.
func buildEngine(cmd *cli.Command) (*sync.Engine, error) {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	applyLoggingConfig(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dryRun := cmd.Bool("dry-run")
	skipBackup := cmd.Bool("skip-backup")

	strategy := cfg.Sync.ConflictResolution
	if s := cmd.String("strategy"); s != "" {
		if !resolve.ParseStrategy(s).IsValid() {
			return nil, fmt.Errorf("unknown strategy %q (valid: %v)", s, resolve.AllStrategies())
		}
		strategy = s
	}

	notesDir := cfg.LocalNotesPath(root)
	local := store.NewLocal(notesDir, cfg.Filter(), dryRun)
	remote := newObsidian(cfg, dryRun)

	resolver := resolve.ForStrategy(strategy, resolve.Options{
		Prompter: newPrompter(),
		DryRun:   dryRun,
	})

	var backups *backup.Manager
	if cfg.Sync.CreateBackup && !skipBackup {
		backups = backup.NewManager(notesDir, cfg.BackupRoot(root), true, dryRun)
	}

	maxBackups := 0
	if cfg.Backup.CleanupOldBackups {
		maxBackups = cfg.Backup.MaxBackups
	}

	return sync.NewEngine(local, remote, sync.Options{
		Resolver:        resolver,
		Backups:         backups,
		MaxBackups:      maxBackups,
		Notifier:        buildNotifier(cfg),
		NotifyOnSuccess: cfg.Notifications.NotifyOnSuccess,
		NotifyOnError:   cfg.Notifications.NotifyOnError,
		DryRun:          dryRun,
		OnProgress:      newProgressFunc(),
	}), nil
}

func newObsidian(cfg *config.Config, dryRun bool) *store.Obsidian {
	return store.NewObsidian(store.ObsidianOptions{
		APIHost:            cfg.Obsidian.APIHost,
		APIKey:             cfg.Obsidian.APIKey,
		VaultPath:          cfg.Obsidian.VaultProjectPath,
		Filter:             cfg.Filter(),
		DryRun:             dryRun,
		InsecureSkipVerify: cfg.Obsidian.InsecureSkipVerify,
	})
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	slackURL := ""
	if cfg.Notifications.EnableSlack {
		slackURL = cfg.Notifications.SlackWebhookURL
	}
	discordURL := ""
	if cfg.Notifications.EnableDiscord {
		discordURL = cfg.Notifications.DiscordWebhookURL
	}
	if slackURL == "" && discordURL == "" {
		return notify.Noop{}
	}
	return notify.NewWebhook(slackURL, discordURL)
}

// newProgressFunc renders one progress bar per sync direction.
func newProgressFunc() sync.ProgressFunc {
	var bar *progress.Bar
	var current sync.Direction

	return func(direction sync.Direction, cur, total int, path string) {
		if bar == nil || direction != current {
			if bar != nil {
				_ = bar.Finish()
			}
			bar = progress.ForPass(string(direction), total)
			current = direction
		}
		bar.Describe(fmt.Sprintf("Syncing %s", path))
		_ = bar.Set(cur)
	}
}

// printReport prints a colored summary of a sync pass.
func printReport(r *sync.Report) {
	if r.DryRun {
		fmt.Println(ui.Warning("Dry run - no changes made"))
	}

	fmt.Print(r.Summary())

	if r.HasErrors() {
		fmt.Println(ui.StatusError(fmt.Sprintf("%d note(s) failed",
			r.LocalToRemote.Errors+r.RemoteToLocal.Errors)))
	} else if r.TotalChanged() == 0 {
		fmt.Println(ui.StatusSkipped("everything up to date"))
	} else {
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("%d note(s) synced", r.TotalChanged())))
	}
}
