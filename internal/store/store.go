// Package store provides uniform read/write/list/delete access to the two
// sides of a sync: the local notes directory and the remote Obsidian vault.
package store

import (
	"context"

	"github.com/klauern/notesync/internal/model"
)

// Store is one side of a sync. Implementations apply the configured file
// filter to List and treat an absent note as a valid Read outcome, not an
// error.
type Store interface {
	// Name identifies the store in logs and reports.
	Name() string

	// List returns the identifiers of all qualifying notes.
	List(ctx context.Context) ([]model.Ref, error)

	// Read returns a note's content. found is false when the note does
	// not exist; that is distinct from a transport or filesystem error.
	Read(ctx context.Context, path string) (content string, found bool, err error)

	// Write creates or replaces a note. Writing identical content is an
	// observable no-op. In dry-run mode the write is logged and skipped.
	Write(ctx context.Context, path string, content string) error

	// Delete removes a note. In dry-run mode the delete is logged and
	// skipped.
	Delete(ctx context.Context, path string) error
}

// Pinger is the optional liveness probe a store may offer. A sync pass
// fails fast when the probe reports the store unreachable.
type Pinger interface {
	TestConnection(ctx context.Context) bool
}
