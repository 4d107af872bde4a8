package resolve

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/notesync/internal/util"
)

// touchedAt writes a note file and backdates its mtime by age.
func touchedAt(t *testing.T, age time.Duration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.md")
	util.WriteFile(t, path, "on disk")
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}
	return path
}

func TestNewerWins_RecentLocalEdit(t *testing.T) {
	path := touchedAt(t, 10*time.Second)
	r := NewNewerWins()

	got := r.Resolve("local", "remote", path)
	util.AssertEqual(t, got, "local")
}

func TestNewerWins_StaleLocalFile(t *testing.T) {
	path := touchedAt(t, 400*time.Second)
	r := NewNewerWins()

	got := r.Resolve("local", "remote", path)
	util.AssertEqual(t, got, "remote")
}

func TestNewerWins_AbsentLocalFile(t *testing.T) {
	r := NewNewerWins()

	got := r.Resolve("local", "remote", filepath.Join(t.TempDir(), "missing.md"))
	util.AssertEqual(t, got, "remote")
}

func TestNewerWins_ExactWindowBoundary(t *testing.T) {
	path := touchedAt(t, 299*time.Second)
	r := NewNewerWins()

	util.AssertEqual(t, r.Resolve("local", "remote", path), "local")
}

func TestLocalWins(t *testing.T) {
	util.AssertEqual(t, LocalWins{}.Resolve("local", "remote", "any"), "local")
}

func TestRemoteWins(t *testing.T) {
	util.AssertEqual(t, RemoteWins{}.Resolve("local", "remote", "any"), "remote")
}

func TestMerge_LocalIsSubset(t *testing.T) {
	local := "line one\nline two\n"
	remote := "line one\nline two\nline three\n"

	got := NewMerge(nil).Resolve(local, remote, "any")
	util.AssertEqual(t, got, remote)
}

func TestMerge_RemoteIsSubset(t *testing.T) {
	local := "line one\nline two\nline three\n"
	remote := "line one\nline two\n"

	got := NewMerge(nil).Resolve(local, remote, "any")
	util.AssertEqual(t, got, local)
}

func TestMerge_IdenticalSets(t *testing.T) {
	// Same lines in different order are mutual subsets; one side wins
	// whole, nothing is lost.
	local := "b\na\n"
	remote := "a\nb\n"

	got := NewMerge(nil).Resolve(local, remote, "any")
	if got != local && got != remote {
		t.Errorf("got %q, want one side intact", got)
	}
}

func TestMerge_DivergentFallsBackToNewerWins(t *testing.T) {
	local := "shared\nlocal only\n"
	remote := "shared\nremote only\n"

	t.Run("recent local edit wins", func(t *testing.T) {
		path := touchedAt(t, 10*time.Second)
		got := NewMerge(nil).Resolve(local, remote, path)
		util.AssertEqual(t, got, local)
	})

	t.Run("stale local loses", func(t *testing.T) {
		path := touchedAt(t, 400*time.Second)
		got := NewMerge(nil).Resolve(local, remote, path)
		util.AssertEqual(t, got, remote)
	})
}

func TestMerge_CustomFallback(t *testing.T) {
	got := NewMerge(LocalWins{}).Resolve("x\n1\n", "x\n2\n", "nonexistent")
	util.AssertEqual(t, got, "x\n1\n")
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"newer_wins", StrategyNewerWins},
		{"local_wins", StrategyLocalWins},
		{"remote_wins", StrategyRemoteWins},
		{"obsidian_wins", StrategyRemoteWins}, // legacy alias
		{"merge", StrategyMerge},
		{"interactive", StrategyInteractive},
		{"bogus", StrategyNewerWins},
		{"", StrategyNewerWins},
	}

	for _, tt := range tests {
		if got := ParseStrategy(tt.in); got != tt.want {
			t.Errorf("ParseStrategy(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestForStrategy_AlwaysDecorated(t *testing.T) {
	for _, s := range AllStrategies() {
		r := ForStrategy(string(s), Options{})
		if _, ok := r.(*ConflictBackup); !ok {
			t.Errorf("ForStrategy(%s) returned undecorated %T", s, r)
		}
	}
}

func TestForStrategy_UnknownDefaultsToNewerWins(t *testing.T) {
	r := ForStrategy("definitely-not-a-strategy", Options{DryRun: true})

	// Behaves like newer-wins: absent local file means remote wins.
	got := r.Resolve("local", "remote", filepath.Join(t.TempDir(), "missing.md"))
	util.AssertEqual(t, got, "remote")
}

func TestAllStrategies_Valid(t *testing.T) {
	for _, s := range AllStrategies() {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
		if s.Description() == "Unknown strategy" {
			t.Errorf("%s has no description", s)
		}
	}
	if Strategy("nope").IsValid() {
		t.Error("unknown strategy should be invalid")
	}
}
