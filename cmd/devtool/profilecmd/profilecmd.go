// Package profilecmd implements the `devtool profile` command group:
// inspecting configured development profiles and their merged pins.
package profilecmd

import (
	"github.com/spf13/cobra"
)

// NewProfileCommand constructs the `devtool profile` parent command.
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect development profiles and their constraint pins",
	}

	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewPinsCommand())

	return cmd
}
