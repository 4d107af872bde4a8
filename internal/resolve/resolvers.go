package resolve

import (
	"os"
	"strings"
	"time"

	"github.com/klauern/notesync/internal/logging"
)

// recentEditWindow is how long after its last modification a local file is
// presumed to be the edit in progress.
const recentEditWindow = 5 * time.Minute

// NewerWins keeps the local content when the local file was modified
// within the recent-edit window, and the remote content otherwise. A
// missing local file means the remote version is the only real one.
type NewerWins struct {
	window time.Duration
	now    func() time.Time
}

// NewNewerWins creates the default newer-wins resolver.
func NewNewerWins() NewerWins {
	return NewerWins{window: recentEditWindow, now: time.Now}
}

// Resolve implements Resolver.
func (r NewerWins) Resolve(localContent, remoteContent, path string) string {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return remoteContent
		}
		// Unable to judge recency: keep the local edit rather than
		// silently discarding it.
		logging.Warn("could not stat local note, keeping local content",
			logging.Path(path),
			logging.Err(err),
		)
		return localContent
	}

	if r.now().Sub(info.ModTime()) < r.window {
		return localContent
	}
	return remoteContent
}

// LocalWins always keeps the local content.
type LocalWins struct{}

// Resolve implements Resolver.
func (LocalWins) Resolve(localContent, _, _ string) string {
	return localContent
}

// RemoteWins always keeps the vault content.
type RemoteWins struct{}

// Resolve implements Resolver.
func (RemoteWins) Resolve(_, remoteContent, _ string) string {
	return remoteContent
}

// Merge treats each content as a set of lines and keeps the superset when
// one side is a pure addition over the other. Divergent edits are not
// merged line by line; they defer to the fallback resolver.
type Merge struct {
	fallback Resolver
}

// NewMerge creates a merge resolver. A nil fallback defaults to newer-wins.
func NewMerge(fallback Resolver) Merge {
	if fallback == nil {
		fallback = NewNewerWins()
	}
	return Merge{fallback: fallback}
}

// Resolve implements Resolver.
func (m Merge) Resolve(localContent, remoteContent, path string) string {
	localLines := lineSet(localContent)
	remoteLines := lineSet(remoteContent)

	if isSubset(localLines, remoteLines) {
		return remoteContent
	}
	if isSubset(remoteLines, localLines) {
		return localContent
	}

	logging.Debug("line sets diverge, deferring to fallback", logging.Path(path))
	return m.fallback.Resolve(localContent, remoteContent, path)
}

func lineSet(content string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		set[line] = struct{}{}
	}
	return set
}

func isSubset(a, b map[string]struct{}) bool {
	for line := range a {
		if _, ok := b[line]; !ok {
			return false
		}
	}
	return true
}
