// Package logging sanitizes command lines, environments and freeform text
// before they reach structured logs.
package logging

import (
	"regexp"
	"strings"
)

const redactionPlaceholder = "***"

var allowlistedEnvKeys = map[string]struct{}{
	"PATH":              {},
	"HOME":              {},
	"USER":              {},
	"SHELL":             {},
	"PWD":               {},
	"LANG":              {},
	"LC_ALL":            {},
	"TMPDIR":            {},
	"TMP":               {},
	"TERM":              {},
	"LOGNAME":           {},
	"EDITOR":            {},
	"CONDA_PREFIX":      {},
	"CONDA_DEFAULT_ENV": {},
	"MAMBA_ROOT_PREFIX": {},
	"CI_SERVER_URL":     {},
	"CI_PROJECT_PATH":   {},
}

// SanitizeCommand returns a sanitized string representation of the provided
// command arguments. Sensitive tokens (GitLab private tokens, passwords)
// are redacted while leaving the overall structure intact.
func SanitizeCommand(args []string) string {
	if len(args) == 0 {
		return ""
	}

	sanitized := make([]string, 0, len(args))
	redactNext := false

	for _, arg := range args {
		if redactNext {
			sanitized = append(sanitized, redactionPlaceholder)
			redactNext = false
			continue
		}

		if eq := strings.Index(arg, "="); eq > 0 {
			flag := arg[:eq]
			if isSensitiveKey(flag) {
				sanitized = append(sanitized, flag+"="+redactionPlaceholder)
				continue
			}
			sanitized = append(sanitized, arg)
			continue
		}

		sanitized = append(sanitized, arg)
		if isSensitiveFlag(arg) {
			redactNext = true
		}
	}

	if redactNext {
		sanitized = append(sanitized, redactionPlaceholder)
	}

	return strings.Join(sanitized, " ")
}

// SanitizeEnv returns a sanitized copy of the provided environment
// variables. Sensitive values are replaced with a placeholder while
// allowlisted keys pass through.
func SanitizeEnv(env map[string]string) map[string]string {
	if len(env) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(env))
	for key, value := range env {
		if _, ok := allowlistedEnvKeys[key]; ok {
			out[key] = value
			continue
		}
		if isSensitiveKey(key) {
			out[key] = redactionPlaceholder
			continue
		}
		out[key] = value
	}
	return out
}

var sensitivePattern = regexp.MustCompile(`(?i)(password|passphrase|secret|token|apikey|private[-_]?key)=([^\s]{1,128})`)

// SanitizeText redacts sensitive key/value pairs inside freeform strings,
// such as stderr excerpts from external commands.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	return sensitivePattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := strings.SplitN(match, "=", 2)
		if len(parts) != 2 {
			return match
		}
		return parts[0] + "=" + redactionPlaceholder
	})
}

func isSensitiveFlag(flag string) bool {
	if !strings.HasPrefix(flag, "-") {
		return false
	}
	return isSensitiveKey(flag)
}

func isSensitiveKey(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "password") ||
		strings.Contains(lower, "passphrase") ||
		strings.Contains(lower, "secret") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "apikey") ||
		strings.Contains(lower, "credential") ||
		strings.Contains(lower, "private-key") ||
		strings.Contains(lower, "private_key")
}
