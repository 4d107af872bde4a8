package model

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which filenames participate in a sync. A name qualifies
// only if it ends with one of the include extensions and does not match
// any exclude pattern. Patterns are shell-glob style and are matched
// against the bare filename, never the full path.
type Filter struct {
	// IncludeExtensions lists qualifying suffixes, e.g. ".md".
	IncludeExtensions []string

	// ExcludePatterns lists glob patterns for names to skip, e.g. "*.tmp".
	ExcludePatterns []string
}

// DefaultFilter returns the filter used when no configuration is present:
// markdown files, skipping dotfiles and editor droppings.
func DefaultFilter() Filter {
	return Filter{
		IncludeExtensions: []string{".md"},
		ExcludePatterns:   []string{".*", "*.tmp", "*.bak"},
	}
}

// Match reports whether the given bare filename qualifies.
func (f Filter) Match(name string) bool {
	if !f.matchExtension(name) {
		return false
	}
	for _, pattern := range f.ExcludePatterns {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			// Malformed pattern: ignore it rather than exclude everything.
			continue
		}
		if ok {
			return false
		}
	}
	return true
}

func (f Filter) matchExtension(name string) bool {
	for _, ext := range f.IncludeExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
