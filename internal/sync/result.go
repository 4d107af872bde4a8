package sync

import (
	"fmt"
	"strings"
	"time"
)

// Direction identifies which way a one-directional pass flows.
type Direction string

const (
	// LocalToRemote pushes the local notes directory into the vault.
	LocalToRemote Direction = "local_to_remote"

	// RemoteToLocal pulls the vault into the local notes directory.
	RemoteToLocal Direction = "remote_to_local"
)

// Stats counts the outcomes of one direction of a pass. Counters only
// accumulate; they are never decremented.
type Stats struct {
	// Created counts notes that did not exist in the target.
	Created int

	// Updated counts notes whose conflict was resolved and written.
	Updated int

	// Skipped counts notes byte-identical on both sides.
	Skipped int

	// Errors counts notes that failed to read or write.
	Errors int
}

// Changed returns the number of notes this direction mutated.
func (s Stats) Changed() int {
	return s.Created + s.Updated
}

// String returns the compact single-line form used in logs.
func (s Stats) String() string {
	return fmt.Sprintf("created %d, updated %d, skipped %d, errors %d",
		s.Created, s.Updated, s.Skipped, s.Errors)
}

// Report is the result of one full bidirectional pass.
type Report struct {
	// LocalToRemote holds the stats of the push leg.
	LocalToRemote Stats

	// RemoteToLocal holds the stats of the pull leg.
	RemoteToLocal Stats

	// Duration is the wall-clock time of the whole pass.
	Duration time.Duration

	// BackupPath is the snapshot created before the pass, if any.
	BackupPath string

	// DryRun indicates no changes were actually applied.
	DryRun bool
}

// TotalChanged returns the number of notes mutated in both directions.
func (r *Report) TotalChanged() int {
	return r.LocalToRemote.Changed() + r.RemoteToLocal.Changed()
}

// HasErrors returns true if any note failed in either direction.
func (r *Report) HasErrors() bool {
	return r.LocalToRemote.Errors > 0 || r.RemoteToLocal.Errors > 0
}

// Summary returns a human-readable summary of the pass.
func (r *Report) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Sync complete in %.2fs\n", r.Duration.Seconds()))
	sb.WriteString(fmt.Sprintf("  Local -> Obsidian: %s\n", r.LocalToRemote))
	sb.WriteString(fmt.Sprintf("  Obsidian -> Local: %s\n", r.RemoteToLocal))

	if r.BackupPath != "" {
		sb.WriteString(fmt.Sprintf("  Backup: %s\n", r.BackupPath))
	}

	return sb.String()
}
