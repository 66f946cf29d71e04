package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// rawDocument mirrors the on-disk TOML layout. Unknown sections (for
// example per-site extras) are ignored rather than rejected, since the
// configuration file is shared with other tooling.
type rawDocument struct {
	Default  string            `toml:"default"`
	Profiles map[string]string `toml:"profiles"`
}

// Load reads and validates the configuration file at path. A missing file
// yields an empty document: the tool is usable without configuration as
// long as profiles are addressed by explicit paths.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Document{Profiles: map[string]string{}}, nil
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	var raw rawDocument
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	doc := &Document{
		Default:    strings.TrimSpace(raw.Default),
		Profiles:   map[string]string{},
		SourcePath: path,
	}
	for alias, profilePath := range raw.Profiles {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		doc.Profiles[alias] = profilePath
	}

	if doc.Default != "" {
		if _, ok := doc.Profiles[doc.Default]; !ok {
			return nil, &ParseError{
				Path: path,
				Err:  fmt.Errorf("default profile %q is not declared in [profiles]", doc.Default),
			}
		}
	}

	return doc, nil
}

// LoadDefault locates and loads the user configuration, honouring the
// DEVTOOL_CONFIG override and the XDG base-directory convention.
func LoadDefault() (*Document, error) {
	loc, err := Locate("")
	if err != nil {
		return nil, err
	}
	return Load(loc.Path)
}

// ResolveAlias returns the requested alias when one is given, the
// configured default otherwise.
func ResolveAlias(doc *Document, requested string) (string, error) {
	if alias := strings.TrimSpace(requested); alias != "" {
		return alias, nil
	}
	if doc != nil && doc.Default != "" {
		return doc.Default, nil
	}
	return "", &NoDefaultProfileError{}
}

// ProfilePath looks up an alias in the document and returns its path with
// user-home and environment-variable expansion applied.
func ProfilePath(doc *Document, alias string) (string, error) {
	if doc == nil {
		return "", &UnknownProfileError{Alias: alias}
	}
	path, ok := doc.Profiles[alias]
	if !ok {
		return "", &UnknownProfileError{Alias: alias}
	}
	return expandUserPath(path), nil
}
