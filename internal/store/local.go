package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauern/notesync/internal/logging"
	"github.com/klauern/notesync/internal/model"
)

// Local is the filesystem side of a sync: a single flat directory of note
// files. Listing does not recurse; subdirectories are ignored.
type Local struct {
	dir    string
	filter model.Filter
	dryRun bool
}

// NewLocal creates a local store rooted at dir.
func NewLocal(dir string, filter model.Filter, dryRun bool) *Local {
	return &Local{dir: dir, filter: filter, dryRun: dryRun}
}

// Name implements Store.
func (l *Local) Name() string { return "local" }

// Dir returns the store's root directory.
func (l *Local) Dir() string { return l.dir }

// AbsPath returns the absolute path of a note name within the store.
// Conflict resolvers use it to stat and re-read the on-disk file.
func (l *Local) AbsPath(name string) string {
	return filepath.Join(l.dir, filepath.Base(name))
}

// List implements Store. A missing directory yields an empty listing, not
// an error: there is simply nothing to sync yet.
func (l *Local) List(_ context.Context) ([]model.Ref, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn("local notes directory not found", logging.Path(l.dir))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list local notes in %q: %w", l.dir, err)
	}

	var refs []model.Ref
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !l.filter.Match(name) {
			continue
		}
		refs = append(refs, model.Ref{Path: name, Name: name})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Read implements Store.
func (l *Local) Read(_ context.Context, path string) (string, bool, error) {
	// #nosec G304 - path is a note name within the configured directory
	data, err := os.ReadFile(l.AbsPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read local note %q: %w", path, err)
	}
	return string(data), true, nil
}

// Write implements Store.
func (l *Local) Write(_ context.Context, path, content string) error {
	if l.dryRun {
		logging.Info("DRY RUN: would write local note", logging.Note(path))
		return nil
	}

	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create local notes directory: %w", err)
	}

	// #nosec G306 - notes are user documents
	if err := os.WriteFile(l.AbsPath(path), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write local note %q: %w", path, err)
	}
	return nil
}

// Delete implements Store.
func (l *Local) Delete(_ context.Context, path string) error {
	if l.dryRun {
		logging.Info("DRY RUN: would delete local note", logging.Note(path))
		return nil
	}

	if err := os.Remove(l.AbsPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete local note %q: %w", path, err)
	}
	return nil
}
