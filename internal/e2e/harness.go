// Package e2e provides testing infrastructure for end-to-end CLI tests:
// a harness for running commands in an isolated project directory and a
// fake vault server standing in for the Obsidian REST API.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/notesync/internal/cli"
	"github.com/klauern/notesync/internal/util"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands against an isolated project directory and a
// fake vault.
type Harness struct {
	t          *testing.T
	projectDir string
	vault      *FakeVault
}

// NewHarness creates a harness with a fresh project directory and fake
// vault, and points the CLI at both through the environment.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	h := &Harness{
		t:          t,
		projectDir: t.TempDir(),
		vault:      NewFakeVault(),
	}
	t.Cleanup(h.vault.Close)

	t.Setenv("OBSIDIAN_API_HOST", h.vault.URL())
	t.Setenv("OBSIDIAN_API_KEY", "test-key")
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("DISCORD_WEBHOOK_URL", "")

	return h
}

// ProjectDir returns the isolated project directory.
func (h *Harness) ProjectDir() string {
	return h.projectDir
}

// Vault returns the fake vault backing this harness.
func (h *Harness) Vault() *FakeVault {
	return h.vault
}

// WriteNote writes a note into the local notes directory.
func (h *Harness) WriteNote(name, content string) {
	h.t.Helper()
	util.WriteFile(h.t, filepath.Join(h.projectDir, "notes", name), content)
}

// ReadNote reads a note from the local notes directory.
func (h *Harness) ReadNote(name string) string {
	h.t.Helper()
	return util.ReadFile(h.t, filepath.Join(h.projectDir, "notes", name))
}

// Run executes a CLI command with the given arguments and captures stdout.
// The project root and color flags are injected automatically.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	full := append([]string{"notesync", "--no-color", "--project-root", h.projectDir}, args...)

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Read concurrently so output larger than the pipe buffer cannot
	// block the command.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), full)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
