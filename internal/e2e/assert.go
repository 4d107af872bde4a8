package e2e

import (
	"strings"
	"testing"
)

// AssertSuccess fails the test if the command did not succeed.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Fatalf("expected success, got error: %v\nstdout: %s", r.Err, r.Stdout)
	}
}

// AssertError fails the test if the command did not return an error.
func AssertError(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Fatalf("expected error, but command succeeded\nstdout: %s", r.Stdout)
	}
}

// AssertOutputContains fails the test if stdout doesn't contain the substring.
func AssertOutputContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if !strings.Contains(r.Stdout, substr) {
		t.Errorf("expected output to contain %q\ngot: %s", substr, r.Stdout)
	}
}

// AssertVaultNote fails the test if the vault note is absent or differs.
func AssertVaultNote(t *testing.T, v *FakeVault, name, want string) {
	t.Helper()
	got, ok := v.Get(name)
	if !ok {
		t.Fatalf("vault has no note %q", name)
	}
	if got != want {
		t.Errorf("vault %s = %q, want %q", name, got, want)
	}
}
