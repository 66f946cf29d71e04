// Package conda wraps conda/mamba package-build invocation, feeding the
// merged pin mapping to the build as a variant configuration file.
package conda

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bioidiap/idiap-devtools/internal/config"
	"github.com/bioidiap/idiap-devtools/pkg/pins"
	"github.com/bioidiap/idiap-devtools/pkg/profile"
)

// BuildRequest collects everything a single package build needs.
type BuildRequest struct {
	Settings *config.BuildSettings
	Profile  *profile.Profile
	Pins     pins.Mapping
}

// Builder abstracts package-build execution.
type Builder interface {
	Build(ctx context.Context, req *BuildRequest) error
}

// CommandRunner executes an external command. Injected so tests can observe
// the constructed invocation without running conda.
type CommandRunner func(ctx context.Context, name string, args []string) error

// ExecBuilder shells out to conda or mamba.
type ExecBuilder struct {
	runner CommandRunner
}

// NewExecBuilder constructs a builder using the provided runner, or a
// direct exec-based runner when nil.
func NewExecBuilder(runner CommandRunner) *ExecBuilder {
	if runner == nil {
		runner = execRunner
	}
	return &ExecBuilder{runner: runner}
}

func execRunner(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Build renders the pin mapping to a variant configuration file in a
// temporary directory and invokes the selected build tool on the recipe.
// The temporary directory is removed when the build finishes.
func (b *ExecBuilder) Build(ctx context.Context, req *BuildRequest) error {
	if req == nil || req.Settings == nil {
		return fmt.Errorf("build request is incomplete")
	}

	workDir, err := os.MkdirTemp("", "devtool-build-")
	if err != nil {
		return fmt.Errorf("create build work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	variantPath := filepath.Join(workDir, "variant_config.yaml")
	if err := writeVariantConfig(variantPath, req.Pins, req.Settings.PythonVersion); err != nil {
		return err
	}

	name, args := buildArgs(req.Settings, variantPath)
	if req.Settings.DryRun {
		return nil
	}
	return b.runner(ctx, name, args)
}

// buildArgs assembles the tool invocation. Both conda and mamba are driven
// through `conda build`; mamba is selected via the mambabuild subcommand
// provided by boa.
func buildArgs(settings *config.BuildSettings, variantPath string) (string, []string) {
	name := "conda"
	sub := "build"
	if settings.Tool == config.ToolMamba {
		sub = "mambabuild"
	}

	args := []string{sub, settings.Recipe, "--variant-config-files", variantPath}
	if settings.PlatformTag != "" {
		args = append(args, "--target-platform", settings.PlatformTag)
	}
	return name, args
}

// writeVariantConfig renders the merged pins as a conda-build variant
// document: each package maps to a single-element version list.
func writeVariantConfig(path string, mapping pins.Mapping, pythonVersion string) error {
	doc := make(map[string][]string, len(mapping)+1)

	names := mapping.Names()
	sort.Strings(names)
	for _, name := range names {
		expr := mapping[name]
		if expr == "" || expr == "*" {
			// Unconstrained packages are left out of the variant file.
			continue
		}
		doc[variantKey(name)] = []string{expr}
	}
	if pythonVersion != "" {
		doc["python"] = []string{pythonVersion}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("render variant config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write variant config %s: %w", path, err)
	}
	return nil
}

// variantKey converts a normalized package name to the underscore form
// conda-build expects for variant keys.
func variantKey(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '-' || r == '.' {
			out[i] = '_'
		}
	}
	return string(out)
}
