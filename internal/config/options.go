package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Tool selects the package-build frontend.
type Tool string

const (
	ToolConda Tool = "conda"
	ToolMamba Tool = "mamba"
)

// BuildOptions capture raw CLI inputs for the build command prior to
// validation.
type BuildOptions struct {
	Tool          string
	Recipe        string
	ProfileAlias  string
	PythonVersion string
	PlatformTag   string
	Pins          []string
	DryRun        bool
	Output        string
}

// BuildSettings is the validated form handed to the build workflow.
type BuildSettings struct {
	Tool          Tool
	Recipe        string
	ProfileAlias  string
	PythonVersion string
	PlatformTag   string
	Overrides     map[string]string
	DryRun        bool
	OutputJSON    bool
}

var (
	errUnknownTool       = errors.New("unknown build tool")
	errRecipeRequired    = errors.New("recipe path is required")
	errBadPythonVersion  = errors.New("python version must look like MAJOR.MINOR")
	errBadPinExpression  = errors.New("pin override must use name=expression form")
	errUnsupportedFormat = errors.New("unsupported output format")
)

// ErrUnknownTool exposes the sentinel.
func ErrUnknownTool() error { return errUnknownTool }

// ErrRecipeRequired exposes the sentinel.
func ErrRecipeRequired() error { return errRecipeRequired }

// ErrBadPythonVersion exposes the sentinel.
func ErrBadPythonVersion() error { return errBadPythonVersion }

// ErrBadPinExpression exposes the sentinel.
func ErrBadPinExpression() error { return errBadPinExpression }

// ErrUnsupportedFormat exposes the sentinel.
func ErrUnsupportedFormat() error { return errUnsupportedFormat }

var pythonVersionRe = regexp.MustCompile(`^\d+\.\d+$`)

// Validate converts options into strongly-typed build settings.
func (o BuildOptions) Validate() (*BuildSettings, error) {
	tool := Tool(strings.ToLower(strings.TrimSpace(o.Tool)))
	switch tool {
	case "":
		tool = ToolMamba
	case ToolConda, ToolMamba:
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, o.Tool)
	}

	if strings.TrimSpace(o.Recipe) == "" {
		return nil, errRecipeRequired
	}

	version := strings.TrimSpace(o.PythonVersion)
	if version != "" && !pythonVersionRe.MatchString(version) {
		return nil, fmt.Errorf("%w: %s", errBadPythonVersion, version)
	}

	overrides := make(map[string]string, len(o.Pins))
	for _, pin := range o.Pins {
		name, expr, ok := strings.Cut(pin, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: %s", errBadPinExpression, pin)
		}
		overrides[strings.TrimSpace(name)] = strings.TrimSpace(expr)
	}

	var outputJSON bool
	switch strings.ToLower(strings.TrimSpace(o.Output)) {
	case "", "text":
	case "json":
		outputJSON = true
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedFormat, o.Output)
	}

	return &BuildSettings{
		Tool:          tool,
		Recipe:        filepath.Clean(o.Recipe),
		ProfileAlias:  strings.TrimSpace(o.ProfileAlias),
		PythonVersion: version,
		PlatformTag:   strings.TrimSpace(o.PlatformTag),
		Overrides:     overrides,
		DryRun:        o.DryRun,
		OutputJSON:    outputJSON,
	}, nil
}
