// Package scaffold renders the skeleton of a new Python package: project
// metadata, a README, a source tree and a CI pipeline, all derived from a
// single project name.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

//go:embed templates
var templateFS embed.FS

// ErrTargetNotEmpty reports a scaffold target that already has contents.
var ErrTargetNotEmpty = errors.New("target directory is not empty")

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9._-]*$`)

// InvalidNameError reports a project name the scaffolder cannot use.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid project name %q: must start with a letter and contain only lowercase letters, digits, '.', '-' or '_'", e.Name)
}

// Options describe the package to generate.
type Options struct {
	// Name is the distribution name (dashes allowed).
	Name string

	// TargetDir receives the rendered tree. Empty means a directory named
	// after the project under the current working directory.
	TargetDir string

	Description string
	Author      string
	Email       string

	// Group is the GitLab namespace the package will live under.
	Group string
}

// projectData is what the templates see.
type projectData struct {
	Name        string
	Module      string
	Description string
	Author      string
	Email       string
	Group       string
	Year        int
}

// moduleName maps a distribution name to an importable Python module name.
func moduleName(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "-", "_"), ".", "_")
}

// templatePlan maps each embedded template onto its rendered path inside
// the target tree. Paths containing {module} are expanded per project.
var templatePlan = map[string]string{
	"templates/pyproject.toml.tmpl": "pyproject.toml",
	"templates/README.md.tmpl":      "README.md",
	"templates/gitlab-ci.yml.tmpl":  ".gitlab-ci.yml",
	"templates/init.py.tmpl":        "src/{module}/__init__.py",
	"templates/test_basic.py.tmpl":  "tests/test_basic.py",
}

// Generate renders the package skeleton and returns the paths written,
// relative to the target directory. The target must not exist or must be
// an empty directory.
func Generate(opts Options) ([]string, error) {
	if !nameRe.MatchString(opts.Name) {
		return nil, &InvalidNameError{Name: opts.Name}
	}

	target := opts.TargetDir
	if target == "" {
		target = opts.Name
	}
	if err := ensureEmptyDir(target); err != nil {
		return nil, err
	}

	data := projectData{
		Name:        opts.Name,
		Module:      moduleName(opts.Name),
		Description: opts.Description,
		Author:      opts.Author,
		Email:       opts.Email,
		Group:       opts.Group,
		Year:        time.Now().Year(),
	}
	if data.Description == "" {
		data.Description = "New package"
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	var written []string
	for src, dst := range templatePlan {
		rel := strings.ReplaceAll(dst, "{module}", data.Module)
		path := filepath.Join(target, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}

		out, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		renderErr := tmpl.ExecuteTemplate(out, filepath.Base(src), data)
		closeErr := out.Close()
		if renderErr != nil {
			return nil, fmt.Errorf("render %s: %w", rel, renderErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("write %s: %w", rel, closeErr)
		}
		written = append(written, rel)
	}

	return written, nil
}

func ensureEmptyDir(path string) error {
	entries, err := os.ReadDir(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.MkdirAll(path, 0o755)
	case err != nil:
		return fmt.Errorf("inspect %s: %w", path, err)
	case len(entries) > 0:
		return fmt.Errorf("%w: %s", ErrTargetNotEmpty, path)
	}
	return nil
}
