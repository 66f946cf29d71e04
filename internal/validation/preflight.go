// Package validation performs host preflight checks before a package build
// is attempted.
package validation

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// HostConfig captures prerequisites required by the build workflow.
type HostConfig struct {
	// Executables that must be found on PATH, e.g. the selected build
	// tool and git.
	Executables []string
	// WritablePaths must exist and accept file creation (build work
	// directories).
	WritablePaths []string
}

// Result describes the outcome of the preflight run.
type Result struct {
	Passed bool
	Issues []string
}

// ValidateHost checks build prerequisites, aggregating all issues rather
// than stopping at the first.
func ValidateHost(cfg HostConfig, sys SystemInspector) Result {
	if sys == nil {
		sys = DefaultInspector{}
	}

	issues := []string{}

	for _, name := range cfg.Executables {
		if _, err := sys.LookPath(name); err != nil {
			issues = append(issues, fmt.Sprintf("executable not found on PATH: %s", name))
		}
	}

	for _, path := range cfg.WritablePaths {
		if !sys.IsWritableDir(path) {
			issues = append(issues, fmt.Sprintf("directory not writable: %s", path))
		}
	}

	return Result{Passed: len(issues) == 0, Issues: issues}
}

// SystemInspector models host interrogation functions, allowing tests to stub.
type SystemInspector interface {
	LookPath(name string) (string, error)
	IsWritableDir(path string) bool
}

// DefaultInspector interrogates the running host.
type DefaultInspector struct{}

// LookPath resolves an executable on PATH.
func (DefaultInspector) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// IsWritableDir probes a directory by creating and removing a temp file.
func (DefaultInspector) IsWritableDir(path string) bool {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return false
	}
	probe, err := os.CreateTemp(path, ".devtool-preflight-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(filepath.Clean(name))
	return true
}
