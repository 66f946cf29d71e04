package profilecmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bioidiap/idiap-devtools/pkg/pins"
)

// PinsOptions holds CLI flags for profile pins.
type PinsOptions struct {
	ShowOptions
	Overrides []string
	Output    string
}

// PinsDeps defines dependencies required by the pins command.
type PinsDeps struct {
	ShowDeps
	MergePins func(files []string, overrides map[string]string) (pins.Mapping, error)
}

var defaultPinsDeps = PinsDeps{
	ShowDeps:  defaultShowDeps,
	MergePins: pins.Merge,
}

// NewPinsCommand constructs the `devtool profile pins` command.
func NewPinsCommand() *cobra.Command {
	opts := PinsOptions{}
	cmd := &cobra.Command{
		Use:   "pins [alias]",
		Short: "Show the merged pin mapping a build would use",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) == 1 {
				opts.Alias = args[0]
			}
			return runPins(cmd, opts, defaultPinsDeps)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Explicit configuration file path")
	cmd.Flags().StringVar(&opts.Python, "python", "", "Python version used to select constraint files")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Platform tag used to select constraint files")
	cmd.Flags().StringArrayVar(&opts.Overrides, "pin", nil, "Extra pin override in name=expression form (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

// RunPinsForTest executes the pins flow with injected dependencies.
func RunPinsForTest(cmd *cobra.Command, opts PinsOptions, deps PinsDeps) error {
	cmd.SilenceUsage = true
	return runPins(cmd, opts, deps)
}

func runPins(cmd *cobra.Command, opts PinsOptions, deps PinsDeps) error {
	resolved, _, err := resolve(opts.ConfigPath, opts.Alias, deps.ShowDeps)
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(opts.Overrides)
	if err != nil {
		return err
	}

	merge := deps.MergePins
	if merge == nil {
		merge = pins.Merge
	}
	files := resolved.ConstraintFiles(opts.Python, opts.Platform)
	merged, err := merge(files, overrides)
	if err != nil {
		return err
	}

	names := merged.Names()
	sort.Strings(names)
	out := cmd.OutOrStdout()

	if opts.Output == "json" {
		payload := map[string]interface{}{
			"profile": resolved.Alias,
			"pins":    merged,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal pins output: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	nameColor := color.New(color.FgCyan)
	for _, name := range names {
		expr := merged[name]
		if expr == "" {
			expr = "*"
		}
		nameColor.Fprint(out, name)
		fmt.Fprintf(out, " %s\n", expr)
	}
	return nil
}

func parseOverrides(raw []string) (map[string]string, error) {
	overrides := make(map[string]string, len(raw))
	for _, pin := range raw {
		name, expr, ok := strings.Cut(pin, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("pin override must use name=expression form: %s", pin)
		}
		overrides[name] = expr
	}
	return overrides, nil
}
