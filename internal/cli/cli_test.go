package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/notesync/internal/util"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

// captureOutput captures stdout during test execution.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	f()

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return buf.String()
}

func TestRun_Version(t *testing.T) {
	out := captureOutput(t, func() {
		if err := Run(context.Background(), []string{"notesync", "version"}); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	if !strings.Contains(out, "notesync version") {
		t.Errorf("version output = %q", out)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if err := Run(context.Background(), []string{"notesync", "frobnicate"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestRun_ConfigInit(t *testing.T) {
	dir := t.TempDir()

	out := captureOutput(t, func() {
		err := Run(context.Background(), []string{
			"notesync", "--project-root", dir, "config", "init",
		})
		if err != nil {
			t.Errorf("config init error = %v", err)
		}
	})

	path := filepath.Join(dir, "notesync.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if !strings.Contains(out, "wrote") {
		t.Errorf("output = %q", out)
	}

	// A second init without --force refuses to overwrite.
	err := Run(context.Background(), []string{
		"notesync", "--project-root", dir, "config", "init",
	})
	if err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestRun_ConfigShow(t *testing.T) {
	dir := t.TempDir()

	out := captureOutput(t, func() {
		err := Run(context.Background(), []string{
			"notesync", "--no-color", "--project-root", dir, "config", "show",
		})
		if err != nil {
			t.Errorf("config show error = %v", err)
		}
	})

	if !strings.Contains(out, "conflict_resolution: newer_wins") {
		t.Errorf("show output missing defaults: %q", out)
	}
}

func TestRun_SyncRequiresAPIKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OBSIDIAN_API_KEY", "")

	err := Run(context.Background(), []string{
		"notesync", "--project-root", dir, "sync",
	})
	if err == nil {
		t.Error("expected validation error without an API key")
	}
}

func TestRun_BackupCreateAndList(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "notes", "a.md"), "alpha")

	out := captureOutput(t, func() {
		err := Run(context.Background(), []string{
			"notesync", "--no-color", "--project-root", dir, "backup", "create",
		})
		if err != nil {
			t.Errorf("backup create error = %v", err)
		}
	})
	if !strings.Contains(out, "created") {
		t.Errorf("create output = %q", out)
	}

	out = captureOutput(t, func() {
		err := Run(context.Background(), []string{
			"notesync", "--no-color", "--project-root", dir, "backup", "list",
		})
		if err != nil {
			t.Errorf("backup list error = %v", err)
		}
	})
	if !strings.Contains(out, "Backups") {
		t.Errorf("list output = %q", out)
	}
}
