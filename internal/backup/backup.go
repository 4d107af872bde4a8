// Package backup provides point-in-time snapshots of the local notes
// directory and their retention policy.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/notesync/internal/logging"
)

const (
	// snapshotTimestamp names snapshot directories. Second resolution;
	// collisions within the same second are not deduplicated, which is
	// acceptable at manual/scheduled trigger cadence.
	snapshotTimestamp = "20060102_150405"

	dirPerm = 0o750
)

// Snapshot is one immutable backup of the notes directory.
type Snapshot struct {
	// Name is the timestamped directory name.
	Name string

	// Path is the absolute snapshot directory.
	Path string

	// ModTime orders snapshots for retention.
	ModTime time.Time
}

// Manager creates and prunes snapshots of one source directory.
type Manager struct {
	sourceDir string
	root      string
	enabled   bool
	dryRun    bool

	now       func() time.Time
	removeAll func(string) error
}

// NewManager creates a backup manager. Snapshots of sourceDir are written
// under root, one timestamped subdirectory each.
func NewManager(sourceDir, root string, enabled, dryRun bool) *Manager {
	return &Manager{
		sourceDir: sourceDir,
		root:      root,
		enabled:   enabled,
		dryRun:    dryRun,
		now:       time.Now,
		removeAll: os.RemoveAll,
	}
}

// Create copies the entire source directory tree into a new timestamped
// snapshot. Returns "" with no side effect when backups are disabled or
// the source directory does not exist. In dry-run mode the copy is skipped
// but the would-be path is still returned.
func (m *Manager) Create() (string, error) {
	if !m.enabled {
		return "", nil
	}

	if _, err := os.Stat(m.sourceDir); err != nil {
		if os.IsNotExist(err) {
			logging.Warn("backup source directory not found", logging.Path(m.sourceDir))
			return "", nil
		}
		return "", fmt.Errorf("failed to stat backup source %q: %w", m.sourceDir, err)
	}

	dest := filepath.Join(m.root, m.now().Format(snapshotTimestamp))

	if m.dryRun {
		logging.Info("DRY RUN: would create backup", logging.Path(dest))
		return dest, nil
	}

	if err := copyTree(m.sourceDir, dest); err != nil {
		return "", fmt.Errorf("backup creation failed: %w", err)
	}

	logging.Info("backup created", logging.Path(dest))
	return dest, nil
}

// List returns all snapshots, newest first by modification time.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list backups in %q: %w", m.root, err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name:    entry.Name(),
			Path:    filepath.Join(m.root, entry.Name()),
			ModTime: info.ModTime(),
		})
	}

	// Newest first.
	for i := 0; i < len(snapshots)-1; i++ {
		for j := i + 1; j < len(snapshots); j++ {
			if snapshots[i].ModTime.Before(snapshots[j].ModTime) {
				snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
			}
		}
	}

	return snapshots, nil
}

// CleanupOld deletes every snapshot beyond the newest maxBackups. A
// deletion failure on one snapshot is logged and does not abort cleanup of
// the rest. Returns the names of removed snapshots.
func (m *Manager) CleanupOld(maxBackups int) ([]string, error) {
	if maxBackups < 0 {
		maxBackups = 0
	}

	snapshots, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(snapshots) <= maxBackups {
		return nil, nil
	}

	var removed []string
	for _, old := range snapshots[maxBackups:] {
		if m.dryRun {
			logging.Info("DRY RUN: would remove old backup", logging.Path(old.Path))
			removed = append(removed, old.Name)
			continue
		}
		if err := m.removeAll(old.Path); err != nil {
			logging.Error("failed to remove old backup",
				logging.Path(old.Path),
				logging.Err(err),
			)
			continue
		}
		logging.Info("removed old backup", logging.Path(old.Path))
		removed = append(removed, old.Name)
	}

	return removed, nil
}

// copyTree recursively copies a directory tree.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, dirPerm)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	// #nosec G304 - src is inside the configured notes directory
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 - dest is inside the backup root
	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
