package scaffoldcmd_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	scaffoldcmd "github.com/bioidiap/idiap-devtools/cmd/devtool/scaffoldcmd"
	"github.com/bioidiap/idiap-devtools/pkg/scaffold"
)

func newCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, out
}

func TestNewCommandFlags(t *testing.T) {
	cmd := scaffoldcmd.NewNewCommand()
	for _, name := range []string{"target", "description", "author", "email", "group"} {
		if cmd.Flag(name) == nil {
			t.Fatalf("expected flag %s to exist", name)
		}
	}
}

func TestNewCommandListsWrittenFiles(t *testing.T) {
	cmd, out := newCommand()
	opts := scaffoldcmd.Options{
		Name:      "my-package",
		TargetDir: filepath.Join(t.TempDir(), "my-package"),
		Author:    "Jane Doe",
	}

	if err := scaffoldcmd.RunNewForTest(cmd, opts, scaffoldcmd.Deps{}); err != nil {
		t.Fatalf("run new: %v", err)
	}
	for _, expected := range []string{
		"Created package my-package", "pyproject.toml", "src/my_package/__init__.py",
		`"phase":"scaffold"`, `"outcome":"success"`,
	} {
		if !strings.Contains(out.String(), expected) {
			t.Fatalf("expected output to contain %q, got %q", expected, out.String())
		}
	}
}

func TestNewCommandPropagatesGeneratorErrors(t *testing.T) {
	cmd, _ := newCommand()
	opts := scaffoldcmd.Options{Name: "pkg"}
	deps := scaffoldcmd.Deps{
		Generate: func(scaffold.Options) ([]string, error) {
			return nil, scaffold.ErrTargetNotEmpty
		},
	}

	err := scaffoldcmd.RunNewForTest(cmd, opts, deps)
	if !errors.Is(err, scaffold.ErrTargetNotEmpty) {
		t.Fatalf("expected target-not-empty error, got %v", err)
	}
}
