package util

import (
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home := HomeDir()

	tests := []struct {
		in   string
		base string
		want string
	}{
		{"", "/base", ""},
		{"~", "/base", home},
		{"~/notes", "/base", filepath.Join(home, "notes")},
		{"/abs/notes", "/base", "/abs/notes"},
		{"notes", "/base", filepath.Join("/base", "notes")},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in, tt.base); got != tt.want {
			t.Errorf("ExpandPath(%q, %q) = %q, want %q", tt.in, tt.base, got, tt.want)
		}
	}
}

func TestProjectRoot(t *testing.T) {
	if ProjectRoot() == "" {
		t.Error("ProjectRoot returned empty string")
	}
}
