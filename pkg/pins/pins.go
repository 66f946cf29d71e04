// Package pins merges constraint files from a development profile into a
// single package-to-pin mapping.
package pins

import (
	"fmt"
	"regexp"
	"strings"
)

// Mapping maps normalized package names to version-pin expressions. Pin
// expressions are opaque strings; the merger performs no semantic version
// comparison. An empty expression means "no constraint".
type Mapping map[string]string

// Clone creates a copy of the mapping so future mutations do not affect
// the original.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Names returns the package names of the mapping, unsorted.
func (m Mapping) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName canonicalizes a package name for use as a merge key:
// lowercase, with runs of '-', '_' and '.' collapsed to a single '-'.
// This follows the packaging-ecosystem normalization rule, so My-Package,
// my_package and MY.PACKAGE all collide to my-package.
func NormalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// ConstraintParseError reports a constraint file that could not be read or
// parsed. Its presence aborts the whole merge: a partially-merged pin set
// is unsafe to hand to a build.
type ConstraintParseError struct {
	Path string
	Err  error
}

func (e *ConstraintParseError) Error() string {
	return fmt.Sprintf("parse constraint file %s: %v", e.Path, e.Err)
}

func (e *ConstraintParseError) Unwrap() error { return e.Err }
