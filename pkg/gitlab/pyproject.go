package gitlab

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var pep440VersionRe = regexp.MustCompile(`^` + pep440Pattern + `$`)

// UpdatePyproject rewrites a pyproject.toml for a release: the project
// version is set to the given version (or bumped to the next beta when
// empty), and the documentation URL is pointed at the release tag (or the
// default branch when empty).
//
// Comments and formatting of the original document are not preserved;
// the document is decoded and re-encoded.
func UpdatePyproject(contents, version, defaultBranch string) (string, error) {
	var doc map[string]any
	if err := toml.Unmarshal([]byte(contents), &doc); err != nil {
		return "", fmt.Errorf("parse pyproject.toml: %w", err)
	}

	project, _ := doc["project"].(map[string]any)
	if project == nil {
		return "", fmt.Errorf("pyproject.toml has no [project] table")
	}

	if current, _ := project["version"].(string); pep440VersionRe.MatchString(current) {
		if version != "" {
			project["version"] = version
		} else {
			next, err := nextBetaVersion(current)
			if err != nil {
				return "", err
			}
			project["version"] = next
		}
	}

	if urls, _ := project["urls"].(map[string]any); urls != nil {
		if docURL, _ := urls["documentation"].(string); docURL != "" {
			linkRe := regexp.MustCompile(`/` + branchVariants(defaultBranch))
			replacement := "/" + defaultBranch
			if version != "" {
				replacement = "/v" + version
			}
			if linkRe.MatchString(docURL) {
				urls["documentation"] = linkRe.ReplaceAllString(docURL, replacement)
			}
		}
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("render pyproject.toml: %w", err)
	}
	return string(out), nil
}

// nextBetaVersion bumps X.Y.Z to X.Y.(Z+1)b0, the development version
// following a release.
func nextBetaVersion(current string) (string, error) {
	m := releaseTagRe.FindStringSubmatch(current)
	if m == nil {
		return "", fmt.Errorf("version %q is not a release version", current)
	}
	patch, _ := strconv.Atoi(m[3])
	prefix := ""
	if strings.HasPrefix(current, "v") {
		prefix = "v"
	}
	return fmt.Sprintf("%s%s.%s.%db0", prefix, m[1], m[2], patch+1), nil
}
