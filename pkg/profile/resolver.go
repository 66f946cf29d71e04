package profile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolve validates that path exists and is a directory, returning the
// profile with an absolute path. It does not inspect the directory's
// internal structure; missing constraint files surface later, during
// discovery and merging.
func Resolve(alias, path string) (*Profile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path for %s: %w", path, err)
	}

	stat, err := os.Stat(abs)
	if err != nil || !stat.IsDir() {
		return nil, &NotFoundError{Path: abs}
	}

	return &Profile{Alias: alias, Path: abs}, nil
}
