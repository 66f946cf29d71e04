package profilecmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bioidiap/idiap-devtools/internal/config"
	"github.com/bioidiap/idiap-devtools/pkg/profile"
)

// ShowOptions holds CLI flags for profile show.
type ShowOptions struct {
	ConfigPath string
	Alias      string
	Python     string
	Platform   string
}

// ShowDeps defines dependencies required by the show command.
type ShowDeps struct {
	LocateConfig   func(string) (config.Location, error)
	LoadConfig     func(string) (*config.Document, error)
	ResolveProfile func(alias, path string) (*profile.Profile, error)
}

var defaultShowDeps = ShowDeps{
	LocateConfig:   config.Locate,
	LoadConfig:     config.Load,
	ResolveProfile: profile.Resolve,
}

// NewShowCommand constructs the `devtool profile show` command.
func NewShowCommand() *cobra.Command {
	opts := ShowOptions{}
	cmd := &cobra.Command{
		Use:   "show [alias]",
		Short: "Show a profile's location and active constraint files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) == 1 {
				opts.Alias = args[0]
			}
			return runShow(cmd, opts, defaultShowDeps)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Explicit configuration file path")
	cmd.Flags().StringVar(&opts.Python, "python", "", "Python version used to select constraint files")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Platform tag used to select constraint files")

	return cmd
}

// RunShowForTest executes the show flow with injected dependencies.
func RunShowForTest(cmd *cobra.Command, opts ShowOptions, deps ShowDeps) error {
	cmd.SilenceUsage = true
	return runShow(cmd, opts, deps)
}

func runShow(cmd *cobra.Command, opts ShowOptions, deps ShowDeps) error {
	resolved, doc, err := resolve(opts.ConfigPath, opts.Alias, deps)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	out := cmd.OutOrStdout()

	bold.Fprintf(out, "Profile %s\n", resolved.Alias)
	fmt.Fprintf(out, "  path:   %s\n", resolved.Path)
	if doc.SourcePath != "" {
		fmt.Fprintf(out, "  config: %s\n", doc.SourcePath)
	}

	files := resolved.ConstraintFiles(opts.Python, opts.Platform)
	if len(files) == 0 {
		fmt.Fprintln(out, "  constraint files: none")
		return nil
	}
	fmt.Fprintln(out, "  constraint files:")
	for _, file := range files {
		fmt.Fprintf(out, "    %s\n", filepath.Base(file))
	}
	return nil
}

func resolve(configPath, requestedAlias string, deps ShowDeps) (*profile.Profile, *config.Document, error) {
	locate := deps.LocateConfig
	if locate == nil {
		locate = config.Locate
	}
	loc, err := locate(configPath)
	if err != nil {
		return nil, nil, err
	}

	load := deps.LoadConfig
	if load == nil {
		load = config.Load
	}
	doc, err := load(loc.Path)
	if err != nil {
		return nil, nil, err
	}

	alias, err := config.ResolveAlias(doc, requestedAlias)
	if err != nil {
		return nil, nil, err
	}
	path, err := config.ProfilePath(doc, alias)
	if err != nil {
		return nil, nil, err
	}

	resolveProfile := deps.ResolveProfile
	if resolveProfile == nil {
		resolveProfile = profile.Resolve
	}
	resolved, err := resolveProfile(alias, path)
	if err != nil {
		return nil, nil, err
	}
	return resolved, doc, nil
}
