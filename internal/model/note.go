// Package model defines the core data types shared across notesync.
package model

import (
	"crypto/md5" // #nosec G501 - content equality digest, not a security boundary
	"encoding/hex"
	"path"
)

// Ref identifies a note within a store without carrying its content.
// Path is the store-relative key; Name is the bare filename.
type Ref struct {
	Path string
	Name string
}

// RefFromPath builds a Ref from a store path.
func RefFromPath(p string) Ref {
	return Ref{Path: p, Name: path.Base(p)}
}

// Note is a single text note as read from a store.
type Note struct {
	// Path is the store-relative path and the note's stable identity.
	Path string

	// Name is the bare filename.
	Name string

	// Content is the full note text.
	Content string
}

// Hash returns the content digest of the note. It is always recomputed
// from the current content, never cached.
func (n Note) Hash() string {
	return ContentHash(n.Content)
}

// ContentHash returns a deterministic 128-bit hex digest of content.
// It is used only for equality comparison between store versions.
func ContentHash(content string) string {
	sum := md5.Sum([]byte(content)) // #nosec G401
	return hex.EncodeToString(sum[:])
}
