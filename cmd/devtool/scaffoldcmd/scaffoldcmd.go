// Package scaffoldcmd implements `devtool new`, generating the skeleton
// of a new Python package.
package scaffoldcmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bioidiap/idiap-devtools/pkg/scaffold"
	"github.com/bioidiap/idiap-devtools/pkg/telemetry"
)

// Options holds CLI flags for the new command.
type Options struct {
	Name        string
	TargetDir   string
	Description string
	Author      string
	Email       string
	Group       string
}

// Deps defines dependencies required by the new command.
type Deps struct {
	Generate func(scaffold.Options) ([]string, error)
	Emitter  func(w io.Writer) (*telemetry.Emitter, error)
}

var defaultDeps = Deps{Generate: scaffold.Generate, Emitter: telemetry.NewEmitter}

// NewNewCommand constructs the `devtool new` command.
func NewNewCommand() *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Generate the skeleton of a new Python package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts.Name = args[0]
			return runNew(cmd, opts, defaultDeps)
		},
	}

	cmd.Flags().StringVar(&opts.TargetDir, "target", "", "Target directory (defaults to the package name)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "One-line package description")
	cmd.Flags().StringVar(&opts.Author, "author", "", "Package author name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Package author email")
	cmd.Flags().StringVar(&opts.Group, "group", "software", "GitLab namespace the package will live under")

	return cmd
}

// RunNewForTest executes the scaffold flow with injected dependencies.
func RunNewForTest(cmd *cobra.Command, opts Options, deps Deps) error {
	cmd.SilenceUsage = true
	return runNew(cmd, opts, deps)
}

func runNew(cmd *cobra.Command, opts Options, deps Deps) error {
	generate := deps.Generate
	if generate == nil {
		generate = scaffold.Generate
	}
	emitterFactory := deps.Emitter
	if emitterFactory == nil {
		emitterFactory = telemetry.NewEmitter
	}
	tel, err := emitterFactory(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var written []string
	err = tel.EmitPhase(telemetry.PhaseScaffold, map[string]string{"name": opts.Name}, func() error {
		var genErr error
		written, genErr = generate(scaffold.Options{
			Name:        opts.Name,
			TargetDir:   opts.TargetDir,
			Description: opts.Description,
			Author:      opts.Author,
			Email:       opts.Email,
			Group:       opts.Group,
		})
		return genErr
	})
	if err != nil {
		return err
	}

	sort.Strings(written)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created package %s:\n", opts.Name)
	for _, path := range written {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}
