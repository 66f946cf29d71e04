package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading tilde and $VAR / ${VAR} references in a path
// string. The home directory and variable lookup are supplied by the caller
// so expansion stays a pure function of its inputs.
//
// Only the bare "~" and "~/" forms are expanded; "~user" forms are returned
// unchanged. Unknown variables expand to the empty string, matching os.Expand.
func ExpandPath(path, home string, lookup func(string) string) string {
	if path == "" {
		return path
	}

	expanded := os.Expand(path, lookup)

	switch {
	case expanded == "~":
		expanded = home
	case strings.HasPrefix(expanded, "~/") || strings.HasPrefix(expanded, `~\`):
		expanded = filepath.Join(home, expanded[2:])
	}

	return filepath.Clean(expanded)
}

// expandUserPath applies ExpandPath with the process environment and the
// current user's home directory.
func expandUserPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return ExpandPath(path, home, os.Getenv)
}
