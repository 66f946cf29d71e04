package gitlab

import (
	"regexp"
	"strings"
)

const pep440Pattern = `v?\d+\.\d+\.\d+(?:(?:a|b|c|rc|dev)\d+)?`

// branchVariants builds the alternation of link fragments that release
// rewriting recognizes: well-known branch aliases, the project's default
// branch, and concrete version tags.
func branchVariants(defaultBranch string) string {
	variants := []string{"available", "latest", "main", "master", "stable"}
	if defaultBranch != "" {
		variants = append(variants, regexp.QuoteMeta(defaultBranch))
	}
	variants = append(variants, pep440Pattern)
	return "(?:" + strings.Join(variants, "|") + ")"
}

// UpdateReadme rewrites version references inside a README so the document
// points at the given release. With an empty version the references are
// pointed back at the default branch (badges back to latest), preparing
// the file for continued development.
func UpdateReadme(contents, version, defaultBranch string) string {
	variants := branchVariants(defaultBranch)

	// Badge images carry the version between dashes; links carry it
	// after a slash.
	badgeRe := regexp.MustCompile(`-` + variants + `-`)
	linkRe := regexp.MustCompile(`/` + variants)

	linkReplacement := "/" + defaultBranch
	badgeReplacement := "-latest-"
	if version != "" {
		linkReplacement = "/v" + version
		badgeReplacement = "-v" + version + "-"
	}

	lines := strings.Split(contents, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if linkRe.MatchString(line) {
			if strings.Contains(line, "gitlab") ||
				strings.Contains(line, "docs-latest") ||
				strings.Contains(line, "docs-stable") {
				line = linkRe.ReplaceAllString(line, linkReplacement)
			}
		}
		if badgeRe.MatchString(line) {
			line = badgeRe.ReplaceAllString(line, badgeReplacement)
		}
		out = append(out, line)
	}

	result := strings.Join(out, "\n")
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}
