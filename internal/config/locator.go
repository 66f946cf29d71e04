package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Source identifies where the configuration file path was discovered.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceEnv      Source = "env"
	SourceXDG      Source = "xdg"
)

// configFileName is the well-known name under the XDG configuration root.
const configFileName = "idiap-devtools.toml"

// EnvConfigPath overrides the configuration file location when set.
const EnvConfigPath = "DEVTOOL_CONFIG"

// Location describes the discovered configuration file.
type Location struct {
	Path   string
	Source Source
}

// ErrConfigNotFound is returned when an explicitly requested configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Locate discovers the configuration file path following the precedence
// rules: explicit path, then DEVTOOL_CONFIG, then the XDG configuration
// home. Explicit and environment paths must exist; the XDG path is returned
// even when absent, since a missing user configuration is not an error.
func Locate(explicitPath string) (Location, error) {
	if path := strings.TrimSpace(explicitPath); path != "" {
		abs, err := toAbsolute(path)
		if err != nil {
			return Location{}, err
		}
		if !fileExists(abs) {
			return Location{}, fmt.Errorf("%w: %s", ErrConfigNotFound, abs)
		}
		return Location{Path: abs, Source: SourceExplicit}, nil
	}

	if path, ok := os.LookupEnv(EnvConfigPath); ok && strings.TrimSpace(path) != "" {
		abs, err := toAbsolute(path)
		if err != nil {
			return Location{}, err
		}
		if !fileExists(abs) {
			return Location{}, fmt.Errorf("%w: %s", ErrConfigNotFound, abs)
		}
		return Location{Path: abs, Source: SourceEnv}, nil
	}

	// xdg.ConfigHome honours XDG_CONFIG_HOME and falls back to ~/.config
	// on Unix platforms.
	return Location{
		Path:   filepath.Join(xdg.ConfigHome, configFileName),
		Source: SourceXDG,
	}, nil
}

func toAbsolute(path string) (string, error) {
	expanded := expandUserPath(path)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	return abs, nil
}

func fileExists(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !stat.IsDir()
}
