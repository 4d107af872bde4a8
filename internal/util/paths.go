//nolint:revive // var-naming - package name is meaningful
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ExpandPath expands a leading ~ to the home directory and resolves
// relative paths against baseDir. Returns "" for empty input.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ProjectRoot returns the directory sync paths are resolved against.
// This is the current working directory, matching how the tool is run
// from a project checkout.
func ProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
