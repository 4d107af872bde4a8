package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauern/notesync/internal/logging"
)

// conflictTimestamp is the layout for conflict backup directory names.
// Second resolution; collisions within the same second are acceptable at
// the cadence conflicts actually occur.
const conflictTimestamp = "20060102_150405"

// ConflictBackup preserves both versions of a conflicted note before
// delegating to the wrapped resolver. Production flow never runs a raw
// strategy undecorated: whatever the strategy discards is still on disk.
type ConflictBackup struct {
	next   Resolver
	dryRun bool
	now    func() time.Time
}

// NewConflictBackup wraps a resolver with the conflict backup side effect.
func NewConflictBackup(next Resolver, dryRun bool) *ConflictBackup {
	return &ConflictBackup{next: next, dryRun: dryRun, now: time.Now}
}

// Resolve implements Resolver. A failed backup is logged as a warning and
// never prevents resolution.
func (c *ConflictBackup) Resolve(localContent, remoteContent, path string) string {
	if c.dryRun {
		logging.Info("DRY RUN: would back up conflict versions", logging.Path(path))
	} else if err := c.writeBackup(localContent, remoteContent, path); err != nil {
		logging.Warn("could not create conflict backup",
			logging.Path(path),
			logging.Err(err),
		)
	}
	return c.next.Resolve(localContent, remoteContent, path)
}

// writeBackup saves both versions under a timestamped conflicts directory
// adjacent to the note.
func (c *ConflictBackup) writeBackup(localContent, remoteContent, path string) error {
	dir := filepath.Join(filepath.Dir(path), "conflicts", c.now().Format(conflictTimestamp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create conflicts directory: %w", err)
	}

	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	localBackup := filepath.Join(dir, stem+"_local"+ext)
	remoteBackup := filepath.Join(dir, stem+"_remote"+ext)

	// #nosec G306 - conflict copies are user documents
	if err := os.WriteFile(localBackup, []byte(localContent), 0o644); err != nil {
		return fmt.Errorf("failed to write local conflict copy: %w", err)
	}
	// #nosec G306
	if err := os.WriteFile(remoteBackup, []byte(remoteContent), 0o644); err != nil {
		return fmt.Errorf("failed to write remote conflict copy: %w", err)
	}

	logging.Info("conflict backup created", logging.Path(dir))
	return nil
}
