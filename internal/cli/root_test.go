package cli_test

import (
	"testing"

	"github.com/bioidiap/idiap-devtools/internal/cli"
)

func TestNewRootCommandRegistersSubcommands(t *testing.T) {
	cmd := cli.NewRootCommand()
	if cmd.Use != "devtool" {
		t.Fatalf("expected use devtool, got %s", cmd.Use)
	}
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"build", "profile", "gitlab", "new"} {
		if !names[expected] {
			t.Fatalf("expected subcommand %s to be registered", expected)
		}
	}
}
