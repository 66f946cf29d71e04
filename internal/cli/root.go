package cli

import (
	"github.com/spf13/cobra"

	buildcmd "github.com/bioidiap/idiap-devtools/cmd/devtool/build"
	gitlabcmd "github.com/bioidiap/idiap-devtools/cmd/devtool/gitlabcmd"
	profilecmd "github.com/bioidiap/idiap-devtools/cmd/devtool/profilecmd"
	scaffoldcmd "github.com/bioidiap/idiap-devtools/cmd/devtool/scaffoldcmd"
)

// NewRootCommand constructs the root devtool command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devtool",
		Short: "devtool automates conda builds, profiles and GitLab releases for package maintainers",
	}

	cmd.AddCommand(buildcmd.NewBuildCommand())
	cmd.AddCommand(profilecmd.NewProfileCommand())
	cmd.AddCommand(gitlabcmd.NewGitlabCommand())
	cmd.AddCommand(scaffoldcmd.NewNewCommand())

	return cmd
}
