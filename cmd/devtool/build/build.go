package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bioidiap/idiap-devtools/internal/config"
	"github.com/bioidiap/idiap-devtools/internal/validation"
	"github.com/bioidiap/idiap-devtools/pkg/conda"
	"github.com/bioidiap/idiap-devtools/pkg/pins"
	"github.com/bioidiap/idiap-devtools/pkg/profile"
	"github.com/bioidiap/idiap-devtools/pkg/telemetry"
)

// Options holds CLI flags for the build command.
type Options struct {
	ConfigPath string
	Profile    string
	Python     string
	Platform   string
	Pins       []string
	Recipe     string
	Tool       string
	DryRun     bool
	Output     string
}

// Deps defines dependencies required by the build command.
type Deps struct {
	LocateConfig   func(string) (config.Location, error)
	LoadConfig     func(string) (*config.Document, error)
	ResolveProfile func(alias, path string) (*profile.Profile, error)
	MergePins      func(files []string, overrides map[string]string) (pins.Mapping, error)
	Builder        conda.Builder
	Inspector      validation.SystemInspector
	Emitter        func(io.Writer) (*telemetry.Emitter, error)
}

var errPreflightFailed = errors.New("host preflight failed")

// ErrPreflightFailed exposes the sentinel.
func ErrPreflightFailed() error { return errPreflightFailed }

// defaultDeps for production wiring.
var defaultDeps = Deps{
	LocateConfig:   config.Locate,
	LoadConfig:     config.Load,
	ResolveProfile: profile.Resolve,
	MergePins:      pins.Merge,
	Builder:        nil,
	Inspector:      validation.DefaultInspector{},
	Emitter:        telemetry.NewEmitter,
}

// NewBuildCommand constructs the `devtool build` command.
func NewBuildCommand() *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a conda package against a development profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runBuild(cmd, opts, defaultDeps)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Explicit configuration file path")
	cmd.Flags().StringVarP(&opts.Profile, "profile", "P", "", "Profile alias (configured default when omitted)")
	cmd.Flags().StringVar(&opts.Python, "python", "", "Python version the build targets, e.g. 3.11")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Target platform tag, e.g. linux-64")
	cmd.Flags().StringArrayVar(&opts.Pins, "pin", nil, "Extra pin override in name=expression form (repeatable)")
	cmd.Flags().StringVarP(&opts.Recipe, "recipe", "r", "", "Recipe directory to build")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "Build frontend: conda or mamba (default mamba)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Resolve and merge without running the build")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

// RunBuildForTest executes the build flow with injected dependencies.
func RunBuildForTest(cmd *cobra.Command, opts Options, deps Deps) error {
	cmd.SilenceUsage = true
	return runBuild(cmd, opts, deps)
}

func runBuild(cmd *cobra.Command, opts Options, deps Deps) error {
	settings, err := config.BuildOptions{
		Tool:          opts.Tool,
		Recipe:        opts.Recipe,
		ProfileAlias:  opts.Profile,
		PythonVersion: opts.Python,
		PlatformTag:   opts.Platform,
		Pins:          opts.Pins,
		DryRun:        opts.DryRun,
		Output:        opts.Output,
	}.Validate()
	if err != nil {
		return err
	}

	doc, err := loadDocument(opts.ConfigPath, deps)
	if err != nil {
		return err
	}

	emitter := deps.Emitter
	if emitter == nil {
		emitter = telemetry.NewEmitter
	}
	tel, err := emitter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var resolved *profile.Profile
	if err := tel.EmitPhase(telemetry.PhaseResolve, map[string]string{"profile": settings.ProfileAlias}, func() error {
		resolved, err = resolveProfile(doc, settings, deps)
		return err
	}); err != nil {
		return err
	}

	files := resolved.ConstraintFiles(settings.PythonVersion, settings.PlatformTag)

	merge := deps.MergePins
	if merge == nil {
		merge = pins.Merge
	}
	var merged pins.Mapping
	if err := tel.EmitPhase(telemetry.PhaseMerge, map[string]string{"files": fmt.Sprint(len(files))}, func() error {
		merged, err = merge(files, settings.Overrides)
		return err
	}); err != nil {
		return err
	}

	if err := tel.EmitPhase(telemetry.PhasePreflight, nil, func() error {
		return runPreflight(settings, deps)
	}); err != nil {
		return err
	}

	builder := deps.Builder
	if builder == nil {
		builder = conda.NewExecBuilder(nil)
	}
	builder = conda.NewLoggingBuilder(builder, tel.StructuredLogger())
	req := &conda.BuildRequest{Settings: settings, Profile: resolved, Pins: merged.Clone()}
	if err := tel.EmitPhase(telemetry.PhaseBuild, map[string]string{"tool": string(settings.Tool)}, func() error {
		return builder.Build(cmd.Context(), req)
	}); err != nil {
		return err
	}

	return emitOutput(cmd, settings, resolved, merged)
}

func loadDocument(explicitPath string, deps Deps) (*config.Document, error) {
	locate := deps.LocateConfig
	if locate == nil {
		locate = config.Locate
	}
	loc, err := locate(explicitPath)
	if err != nil {
		return nil, err
	}

	load := deps.LoadConfig
	if load == nil {
		load = config.Load
	}
	return load(loc.Path)
}

func resolveProfile(doc *config.Document, settings *config.BuildSettings, deps Deps) (*profile.Profile, error) {
	alias, err := config.ResolveAlias(doc, settings.ProfileAlias)
	if err != nil {
		return nil, err
	}
	path, err := config.ProfilePath(doc, alias)
	if err != nil {
		return nil, err
	}

	resolve := deps.ResolveProfile
	if resolve == nil {
		resolve = profile.Resolve
	}
	return resolve(alias, path)
}

func runPreflight(settings *config.BuildSettings, deps Deps) error {
	result := validation.ValidateHost(validation.HostConfig{
		Executables:   []string{"conda", "git"},
		WritablePaths: []string{filepath.Dir(settings.Recipe)},
	}, deps.Inspector)
	if result.Passed {
		return nil
	}
	return fmt.Errorf("%w: %s", errPreflightFailed, strings.Join(result.Issues, "; "))
}

func emitOutput(cmd *cobra.Command, settings *config.BuildSettings, resolved *profile.Profile, merged pins.Mapping) error {
	if settings.OutputJSON {
		names := merged.Names()
		sort.Strings(names)
		pinned := make(map[string]string, len(names))
		for _, name := range names {
			pinned[name] = merged[name]
		}
		payload := map[string]interface{}{
			"status":  "success",
			"profile": resolved.Alias,
			"recipe":  settings.Recipe,
			"tool":    string(settings.Tool),
			"dryRun":  settings.DryRun,
			"pins":    pinned,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal build output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	verb := "completed"
	if settings.DryRun {
		verb = "resolved (dry run)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Build %s for recipe %s using profile %s (%d pins)\n",
		verb, settings.Recipe, resolved.Alias, len(merged))
	return nil
}
