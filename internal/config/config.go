// Package config provides configuration management for notesync.
// It supports YAML and TOML configuration files, .env files, environment
// variable overrides, and sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/klauern/notesync/internal/model"
	"github.com/klauern/notesync/internal/util"
)

// Config represents the complete notesync configuration. Secrets (API key,
// webhook URLs) are read from the environment only and never serialized.
type Config struct {
	// Obsidian configures the remote vault connection.
	Obsidian ObsidianConfig `yaml:"obsidian" toml:"obsidian"`

	// Sync configures synchronization behavior.
	Sync SyncConfig `yaml:"sync" toml:"sync"`

	// Filters restricts which files participate in a sync.
	Filters FiltersConfig `yaml:"filters" toml:"filters"`

	// Backup configures pre-sync snapshots of the local notes directory.
	Backup BackupConfig `yaml:"backup" toml:"backup"`

	// Notifications configures outbound webhooks.
	Notifications NotificationsConfig `yaml:"notifications" toml:"notifications"`

	// Logging configures log verbosity and format.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ObsidianConfig holds connection settings for the Obsidian Local REST API.
type ObsidianConfig struct {
	// APIHost is the base URL of the REST API.
	APIHost string `yaml:"api_host" toml:"api_host"`

	// APIKey is the bearer token. Environment only (OBSIDIAN_API_KEY).
	APIKey string `yaml:"-" toml:"-"`

	// VaultProjectPath is the vault subtree this project syncs against.
	VaultProjectPath string `yaml:"vault_project_path" toml:"vault_project_path"`

	// LocalNotesDir is the local notes directory, relative to the project root.
	LocalNotesDir string `yaml:"local_notes_dir" toml:"local_notes_dir"`

	// InsecureSkipVerify disables TLS certificate verification for the
	// API connection. The Local REST API typically serves a self-signed
	// certificate on localhost, but this must be an explicit opt-in.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" toml:"insecure_skip_verify"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// IntervalSeconds is the pause between passes in watch mode.
	IntervalSeconds int `yaml:"interval_seconds" toml:"interval_seconds"`

	// ConflictResolution names the strategy used when both sides changed.
	ConflictResolution string `yaml:"conflict_resolution" toml:"conflict_resolution"`

	// CreateBackup enables a snapshot of the local notes before each pass.
	CreateBackup bool `yaml:"create_backup" toml:"create_backup"`
}

// FiltersConfig holds file filtering settings.
type FiltersConfig struct {
	// IncludeExtensions lists qualifying suffixes.
	IncludeExtensions []string `yaml:"include_extensions" toml:"include_extensions"`

	// ExcludePatterns lists glob patterns for filenames to skip.
	ExcludePatterns []string `yaml:"exclude_patterns" toml:"exclude_patterns"`
}

// BackupConfig holds backup retention settings.
type BackupConfig struct {
	// MaxBackups is the number of snapshots kept after cleanup.
	MaxBackups int `yaml:"max_backups" toml:"max_backups"`

	// CleanupOldBackups enables retention cleanup after each backup.
	CleanupOldBackups bool `yaml:"cleanup_old_backups" toml:"cleanup_old_backups"`
}

// NotificationsConfig holds webhook notification settings.
type NotificationsConfig struct {
	// EnableSlack turns on Slack webhook notifications.
	EnableSlack bool `yaml:"enable_slack" toml:"enable_slack"`

	// EnableDiscord turns on Discord webhook notifications.
	EnableDiscord bool `yaml:"enable_discord" toml:"enable_discord"`

	// NotifyOnSuccess sends a notification after a pass that changed files.
	NotifyOnSuccess bool `yaml:"notify_on_success" toml:"notify_on_success"`

	// NotifyOnError sends a notification when a pass fails.
	NotifyOnError bool `yaml:"notify_on_error" toml:"notify_on_error"`

	// SlackWebhookURL comes from the environment only (SLACK_WEBHOOK_URL).
	SlackWebhookURL string `yaml:"-" toml:"-"`

	// DiscordWebhookURL comes from the environment only (DISCORD_WEBHOOK_URL).
	DiscordWebhookURL string `yaml:"-" toml:"-"`
}

// LoggingConfig holds logging preferences.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" toml:"level"`

	// JSON switches log output to JSON format.
	JSON bool `yaml:"json" toml:"json"`
}

// Default returns the default configuration for the given project root.
func Default(projectRoot string) *Config {
	projectName := filepath.Base(projectRoot)
	return &Config{
		Obsidian: ObsidianConfig{
			APIHost:          "https://localhost:27124",
			VaultProjectPath: "10-Projects/" + projectName,
			LocalNotesDir:    "notes",
		},
		Sync: SyncConfig{
			IntervalSeconds:    30,
			ConflictResolution: "newer_wins",
			CreateBackup:       true,
		},
		Filters: FiltersConfig{
			IncludeExtensions: []string{".md"},
			ExcludePatterns:   []string{".*", "*.tmp", "*.bak"},
		},
		Backup: BackupConfig{
			MaxBackups:        10,
			CleanupOldBackups: true,
		},
		Notifications: NotificationsConfig{
			NotifyOnError: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// candidateFiles lists config file locations relative to the project root,
// in priority order.
var candidateFiles = []string{
	filepath.Join("config", "notesync.yaml"),
	"notesync.yaml",
	filepath.Join("config", "notesync.toml"),
	"notesync.toml",
}

// FilePath returns the preferred config file path under projectRoot,
// regardless of whether it exists.
func FilePath(projectRoot string) string {
	return filepath.Join(projectRoot, "notesync.yaml")
}

// Load loads the configuration for a project root, merging file values over
// defaults and applying environment overrides. A missing config file is not
// an error; the defaults are used. A .env file in the project root (or up
// to two parent directories) is loaded first so OBSIDIAN_API_KEY and
// friends are available.
func Load(projectRoot string) (*Config, error) {
	loadDotEnv(projectRoot)

	for _, candidate := range candidateFiles {
		path := filepath.Join(projectRoot, candidate)
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(projectRoot, path)
		}
	}

	cfg := Default(projectRoot)
	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. The format is
// chosen by extension: .toml is parsed as TOML, everything else as YAML.
func LoadFromPath(projectRoot, path string) (*Config, error) {
	cfg := Default(projectRoot)

	// #nosec G304 - path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %q: %w", path, err)
		}
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// SaveToPath writes the configuration as YAML to a specific path.
// Secrets are never written.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by the user
	return os.WriteFile(path, data, 0o644)
}

// loadDotEnv loads a .env file from the project root or up to two parent
// directories. Absence is fine.
func loadDotEnv(projectRoot string) {
	dir := projectRoot
	for range 3 {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// applyEnvironment applies environment variable overrides. Connection
// secrets use the same names the Obsidian ecosystem does; everything else
// follows the NOTESYNC_<SECTION>_<KEY> pattern.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("OBSIDIAN_API_HOST"); v != "" {
		c.Obsidian.APIHost = v
	}
	c.Obsidian.APIKey = os.Getenv("OBSIDIAN_API_KEY")
	c.Notifications.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	c.Notifications.DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")

	if v := os.Getenv("NOTESYNC_VAULT_PROJECT_PATH"); v != "" {
		c.Obsidian.VaultProjectPath = v
	}
	if v := os.Getenv("NOTESYNC_LOCAL_NOTES_DIR"); v != "" {
		c.Obsidian.LocalNotesDir = v
	}
	if v := os.Getenv("NOTESYNC_INSECURE_SKIP_VERIFY"); v != "" {
		c.Obsidian.InsecureSkipVerify = parseBool(v)
	}
	if v := os.Getenv("NOTESYNC_SYNC_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Sync.IntervalSeconds = n
		}
	}
	if v := os.Getenv("NOTESYNC_SYNC_STRATEGY"); v != "" {
		c.Sync.ConflictResolution = v
	}
	if v := os.Getenv("NOTESYNC_SYNC_CREATE_BACKUP"); v != "" {
		c.Sync.CreateBackup = parseBool(v)
	}
	if v := os.Getenv("NOTESYNC_BACKUP_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backup.MaxBackups = n
		}
	}
	if v := os.Getenv("NOTESYNC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that the connection settings required for a sync are
// present.
func (c *Config) Validate() error {
	if c.Obsidian.APIHost == "" {
		return errors.New("OBSIDIAN_API_HOST is not set")
	}
	if c.Obsidian.APIKey == "" {
		return errors.New("OBSIDIAN_API_KEY is not set: create a .env file or export it")
	}
	return nil
}

// Filter returns the file filter derived from this configuration.
func (c *Config) Filter() model.Filter {
	return model.Filter{
		IncludeExtensions: c.Filters.IncludeExtensions,
		ExcludePatterns:   c.Filters.ExcludePatterns,
	}
}

// Interval returns the watch-mode pause between passes.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Sync.IntervalSeconds) * time.Second
}

// LocalNotesPath resolves the local notes directory against projectRoot.
func (c *Config) LocalNotesPath(projectRoot string) string {
	return util.ExpandPath(c.Obsidian.LocalNotesDir, projectRoot)
}

// BackupRoot returns the directory backups are written under.
func (c *Config) BackupRoot(projectRoot string) string {
	return filepath.Join(projectRoot, "notes_backup")
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
