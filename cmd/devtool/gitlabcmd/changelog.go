package gitlabcmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bioidiap/idiap-devtools/pkg/gitlab"
	"github.com/bioidiap/idiap-devtools/pkg/telemetry"
)

// ChangelogOptions holds CLI flags for gitlab changelog.
type ChangelogOptions struct {
	Project string
	Server  string
	Token   string
	Since   string
	Heading string
}

// ChangelogDeps defines dependencies required by the changelog command.
type ChangelogDeps struct {
	Lister  func(server, token string) (gitlab.MergeRequestLister, error)
	Emitter func(w io.Writer) (*telemetry.Emitter, error)
}

var errProjectRequired = errors.New("project path or id is required")

// ErrProjectRequired exposes the sentinel.
func ErrProjectRequired() error { return errProjectRequired }

var defaultChangelogDeps = ChangelogDeps{
	Lister: func(server, token string) (gitlab.MergeRequestLister, error) {
		client, err := gitlab.NewClient(server, token)
		if err != nil {
			return nil, err
		}
		return client.MergeRequests, nil
	},
	Emitter: telemetry.NewEmitter,
}

// NewChangelogCommand constructs the `devtool gitlab changelog` command.
func NewChangelogCommand() *cobra.Command {
	opts := ChangelogOptions{}
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Render a markdown changelog from merged merge requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runChangelog(cmd, opts, defaultChangelogDeps)
		},
	}

	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "Project path (group/name) or numeric id")
	cmd.Flags().StringVar(&opts.Server, "server", "", "GitLab server URL (CI_SERVER_URL when omitted)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Access token (DEVTOOL_GITLAB_TOKEN when omitted)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only include changes merged after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Heading, "heading", "Changes", "Heading for the rendered section")

	return cmd
}

// RunChangelogForTest executes the changelog flow with injected dependencies.
func RunChangelogForTest(cmd *cobra.Command, opts ChangelogOptions, deps ChangelogDeps) error {
	cmd.SilenceUsage = true
	return runChangelog(cmd, opts, deps)
}

func runChangelog(cmd *cobra.Command, opts ChangelogOptions, deps ChangelogDeps) error {
	if opts.Project == "" {
		return errProjectRequired
	}

	var since *time.Time
	if opts.Since != "" {
		parsed, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		since = &parsed
	}

	listerFactory := deps.Lister
	if listerFactory == nil {
		listerFactory = defaultChangelogDeps.Lister
	}
	lister, err := listerFactory(opts.Server, opts.Token)
	if err != nil {
		return err
	}

	emitterFactory := deps.Emitter
	if emitterFactory == nil {
		emitterFactory = defaultChangelogDeps.Emitter
	}
	// Events go to stderr so the rendered markdown stays pipeable.
	tel, err := emitterFactory(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var entries []gitlab.ChangelogEntry
	err = tel.EmitPhase(telemetry.PhaseChangelog, map[string]string{"project": opts.Project}, func() error {
		var collectErr error
		entries, collectErr = gitlab.CollectChangelog(cmd.Context(), lister, opts.Project, since)
		return collectErr
	})
	if err != nil {
		return err
	}

	if logErr := tel.StructuredLogger().Emit(telemetry.Entry{
		Category: telemetry.CategoryRemote,
		Message:  "merge requests collected",
		Metadata: map[string]string{"project": opts.Project, "entries": strconv.Itoa(len(entries))},
	}); logErr != nil {
		return logErr
	}

	fmt.Fprint(cmd.OutOrStdout(), gitlab.RenderChangelog(opts.Heading, entries))
	return nil
}
