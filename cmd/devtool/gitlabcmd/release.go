package gitlabcmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bioidiap/idiap-devtools/pkg/gitlab"
	"github.com/bioidiap/idiap-devtools/pkg/telemetry"
)

// ReleaseOptions holds CLI flags for gitlab release.
type ReleaseOptions struct {
	Project     string
	Server      string
	Token       string
	Bump        string
	Description string
	DryRun      bool
	Wait        bool
}

// ReleaseDeps defines dependencies required by the release command.
type ReleaseDeps struct {
	Services func(server, token string) (gitlab.ReleaseServices, error)
	Emitter  func(w io.Writer) (*telemetry.Emitter, error)
}

var defaultReleaseDeps = ReleaseDeps{
	Services: func(server, token string) (gitlab.ReleaseServices, error) {
		client, err := gitlab.NewClient(server, token)
		if err != nil {
			return gitlab.ReleaseServices{}, err
		}
		return gitlab.ServicesFromClient(client), nil
	},
	Emitter: telemetry.NewEmitter,
}

// NewReleaseCommand constructs the `devtool gitlab release` command.
func NewReleaseCommand() *cobra.Command {
	opts := ReleaseOptions{}
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Tag the next version of a project and publish a GitLab release",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runRelease(cmd, opts, defaultReleaseDeps)
		},
	}

	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "Project path (group/name) or numeric id")
	cmd.Flags().StringVar(&opts.Server, "server", "", "GitLab server URL (CI_SERVER_URL when omitted)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Access token (DEVTOOL_GITLAB_TOKEN when omitted)")
	cmd.Flags().StringVar(&opts.Bump, "bump", "patch", "Version component to increase: major, minor or patch")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Release notes (markdown)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute the next tag without writing to the server")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Block until the release pipeline finishes")

	return cmd
}

// RunReleaseForTest executes the release flow with injected dependencies.
func RunReleaseForTest(cmd *cobra.Command, opts ReleaseOptions, deps ReleaseDeps) error {
	cmd.SilenceUsage = true
	return runRelease(cmd, opts, deps)
}

func runRelease(cmd *cobra.Command, opts ReleaseOptions, deps ReleaseDeps) error {
	if opts.Project == "" {
		return errProjectRequired
	}

	servicesFactory := deps.Services
	if servicesFactory == nil {
		servicesFactory = defaultReleaseDeps.Services
	}
	services, err := servicesFactory(opts.Server, opts.Token)
	if err != nil {
		return err
	}

	emitterFactory := deps.Emitter
	if emitterFactory == nil {
		emitterFactory = defaultReleaseDeps.Emitter
	}
	tel, err := emitterFactory(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var result *gitlab.ReleaseResult
	err = tel.EmitPhase(telemetry.PhaseRelease, map[string]string{
		"project": opts.Project,
		"bump":    opts.Bump,
		"dryRun":  strconv.FormatBool(opts.DryRun),
	}, func() error {
		var releaseErr error
		result, releaseErr = gitlab.Release(cmd.Context(), services, opts.Project, gitlab.ReleaseOptions{
			Bump:        gitlab.Bump(opts.Bump),
			Description: opts.Description,
			DryRun:      opts.DryRun,
		})
		return releaseErr
	})
	if err != nil {
		return err
	}

	if !opts.DryRun {
		if logErr := tel.StructuredLogger().Emit(telemetry.Entry{
			Category: telemetry.CategoryRemote,
			Message:  "release created",
			Metadata: map[string]string{"project": opts.Project, "tag": result.TagName},
		}); logErr != nil {
			return logErr
		}
	}

	out := cmd.OutOrStdout()
	if opts.DryRun {
		fmt.Fprintf(out, "Would release %s", result.TagName)
	} else {
		fmt.Fprintf(out, "Released %s", result.TagName)
	}
	if result.PreviousTag != "" {
		fmt.Fprintf(out, " (previous: %s)", result.PreviousTag)
	}
	fmt.Fprintln(out)

	if opts.Wait && result.PipelineID != 0 && services.Pipelines != nil {
		fmt.Fprintf(out, "Waiting for pipeline %d\n", result.PipelineID)
		waiter := gitlab.NewPipelineWaiter(services.Pipelines)
		if err := waiter.Wait(cmd.Context(), opts.Project, result.PipelineID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Pipeline %d succeeded\n", result.PipelineID)
	}
	return nil
}
