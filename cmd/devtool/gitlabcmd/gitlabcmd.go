// Package gitlabcmd implements the `devtool gitlab` command group:
// changelog generation and release tagging against a GitLab server.
package gitlabcmd

import (
	"github.com/spf13/cobra"
)

// NewGitlabCommand constructs the `devtool gitlab` parent command.
func NewGitlabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitlab",
		Short: "Automate changelog and release operations on a GitLab project",
	}

	cmd.AddCommand(NewChangelogCommand())
	cmd.AddCommand(NewReleaseCommand())

	return cmd
}
