package gitlab

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blang/semver/v4"
)

// Bump selects which component of the version to increase.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
)

// ErrUnknownBump reports an unsupported bump selector.
var ErrUnknownBump = errors.New("bump must be major, minor or patch")

// releaseTagRe matches the subset of PEP 440 used for release tags:
// an optional leading v, three numeric components, and an optional
// pre-release suffix on the patch component.
var releaseTagRe = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)((?:a|b|c|rc|dev)\d*)?$`)

// LatestTagName filters tag names down to release tags and returns the
// newest one (without the leading v), or the empty string when none match.
func LatestTagName(tagNames []string) string {
	var (
		best     semver.Version
		bestName string
	)
	for _, name := range tagNames {
		m := releaseTagRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		candidate, err := comparableVersion(m)
		if err != nil {
			continue
		}
		if bestName == "" || candidate.GT(best) {
			best = candidate
			bestName = strings.TrimPrefix(name, "v")
		}
	}
	return bestName
}

// comparableVersion maps a matched release tag to a semver value so tags
// can be ordered; the pre-release suffix becomes a semver pre-release,
// which correctly sorts before the final release.
func comparableVersion(m []string) (semver.Version, error) {
	canonical := fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3])
	if m[4] != "" {
		canonical += "-" + m[4]
	}
	return semver.Parse(canonical)
}

// NextVersion computes the tag name for the next release given the latest
// released version (without leading v, empty when the project has no
// releases yet) and the requested bump.
func NextVersion(latest string, bump Bump) (string, error) {
	switch bump {
	case BumpMajor, BumpMinor, BumpPatch:
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownBump, bump)
	}

	if latest == "" {
		switch bump {
		case BumpMajor:
			return "v1.0.0", nil
		case BumpMinor:
			return "v0.1.0", nil
		default:
			return "v0.0.1", nil
		}
	}

	m := releaseTagRe.FindStringSubmatch(latest)
	if m == nil {
		return "", fmt.Errorf("latest tag v%s has unknown format", latest)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	switch bump {
	case BumpMajor:
		return fmt.Sprintf("v%d.0.0", major+1), nil
	case BumpMinor:
		return fmt.Sprintf("v%d.%d.0", major, minor+1), nil
	}

	// A pre-release on the patch component announces the release it
	// precedes: bumping patch from 1.2.3b0 yields 1.2.3 itself.
	if m[4] != "" {
		return fmt.Sprintf("v%d.%d.%d", major, minor, patch), nil
	}
	return fmt.Sprintf("v%d.%d.%d", major, minor, patch+1), nil
}
