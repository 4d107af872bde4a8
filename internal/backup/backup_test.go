package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/notesync/internal/util"
)

func TestCreate_CopiesTree(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "a.md"), "alpha")
	util.WriteFile(t, filepath.Join(src, "nested", "b.md"), "beta")

	m := NewManager(src, root, true, false)
	m.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	path, err := m.Create()
	util.AssertNoError(t, err)
	util.AssertEqual(t, path, filepath.Join(root, "20240601_090000"))

	util.AssertEqual(t, util.ReadFile(t, filepath.Join(path, "a.md")), "alpha")
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(path, "nested", "b.md")), "beta")
}

func TestCreate_Disabled(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "a.md"), "x")

	m := NewManager(src, root, false, false)
	path, err := m.Create()
	util.AssertNoError(t, err)
	util.AssertEqual(t, path, "")

	entries, _ := os.ReadDir(root)
	util.AssertEqual(t, len(entries), 0)
}

func TestCreate_MissingSource(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), t.TempDir(), true, false)

	path, err := m.Create()
	util.AssertNoError(t, err)
	util.AssertEqual(t, path, "")
}

func TestCreate_DryRunReturnsWouldBePath(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "a.md"), "x")

	m := NewManager(src, root, true, true)
	path, err := m.Create()
	util.AssertNoError(t, err)
	if path == "" {
		t.Fatal("dry run should still report the would-be path")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("dry run must not create the snapshot")
	}
}

// makeSnapshots creates n backup directories with ascending mtimes and
// returns their names, oldest first.
func makeSnapshots(t *testing.T, root string, n int) []string {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Hour)
	names := make([]string, 0, n)
	for i := range n {
		ts := base.Add(time.Duration(i) * time.Hour)
		name := ts.Format(snapshotTimestamp)
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.Chtimes(dir, ts, ts); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
		names = append(names, name)
	}
	return names
}

func TestCleanupOld_Retention(t *testing.T) {
	root := t.TempDir()
	names := makeSnapshots(t, root, 12)

	m := NewManager(t.TempDir(), root, true, false)
	removed, err := m.CleanupOld(10)
	util.AssertNoError(t, err)

	if len(removed) != 2 {
		t.Fatalf("removed %d snapshots, want 2: %v", len(removed), removed)
	}
	// The two oldest go.
	for _, name := range names[:2] {
		if _, statErr := os.Stat(filepath.Join(root, name)); !os.IsNotExist(statErr) {
			t.Errorf("oldest snapshot %s should be gone", name)
		}
	}
	for _, name := range names[2:] {
		if _, statErr := os.Stat(filepath.Join(root, name)); statErr != nil {
			t.Errorf("snapshot %s should survive: %v", name, statErr)
		}
	}
}

func TestCleanupOld_UnderLimit(t *testing.T) {
	root := t.TempDir()
	makeSnapshots(t, root, 3)

	m := NewManager(t.TempDir(), root, true, false)
	removed, err := m.CleanupOld(10)
	util.AssertNoError(t, err)
	util.AssertEqual(t, len(removed), 0)
}

func TestCleanupOld_FailureIsolated(t *testing.T) {
	root := t.TempDir()
	names := makeSnapshots(t, root, 4)

	m := NewManager(t.TempDir(), root, true, false)
	failOn := filepath.Join(root, names[0])
	m.removeAll = func(path string) error {
		if path == failOn {
			return errors.New("injected removal failure")
		}
		return os.RemoveAll(path)
	}

	removed, err := m.CleanupOld(2)
	util.AssertNoError(t, err)

	// names[0] and names[1] are the two oldest; only names[1] is removed.
	util.AssertEqual(t, len(removed), 1)
	util.AssertEqual(t, removed[0], names[1])
	if _, statErr := os.Stat(filepath.Join(root, names[1])); !os.IsNotExist(statErr) {
		t.Error("removable snapshot should be gone despite the earlier failure")
	}
}

func TestCleanupOld_MissingRoot(t *testing.T) {
	m := NewManager(t.TempDir(), filepath.Join(t.TempDir(), "nope"), true, false)

	removed, err := m.CleanupOld(5)
	util.AssertNoError(t, err)
	util.AssertEqual(t, len(removed), 0)
}

func TestList_NewestFirst(t *testing.T) {
	root := t.TempDir()
	names := makeSnapshots(t, root, 3)

	m := NewManager(t.TempDir(), root, true, false)
	snapshots, err := m.List()
	util.AssertNoError(t, err)

	if len(snapshots) != 3 {
		t.Fatalf("List returned %d, want 3", len(snapshots))
	}
	util.AssertEqual(t, snapshots[0].Name, names[2])
	util.AssertEqual(t, snapshots[2].Name, names[0])
}
