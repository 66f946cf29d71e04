package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bioidiap/idiap-devtools/pkg/profile"
)

func TestResolveReturnsAbsoluteProfile(t *testing.T) {
	dir := t.TempDir()

	p, err := profile.Resolve("neuro", dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if p.Alias != "neuro" {
		t.Fatalf("expected alias neuro, got %q", p.Alias)
	}
	if !filepath.IsAbs(p.Path) {
		t.Fatalf("expected absolute path, got %q", p.Path)
	}
}

func TestResolveMissingDirectoryFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")

	_, err := profile.Resolve("neuro", missing)
	var notFound *profile.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Path != missing {
		t.Fatalf("expected path %q in error, got %q", missing, notFound.Path)
	}
	if _, statErr := os.Stat(missing); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("Resolve must not create the directory")
	}
}

func TestResolveFileIsNotAProfile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pins.yaml")
	if err := os.WriteFile(file, []byte("numpy: '*'\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := profile.Resolve("", file)
	var notFound *profile.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for regular file, got %v", err)
	}
}
