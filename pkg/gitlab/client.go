// Package gitlab automates release tagging and changelog generation
// against a GitLab server.
package gitlab

import (
	"errors"
	"os"
	"strings"

	glab "gitlab.com/gitlab-org/api/client-go"
)

const (
	// EnvToken carries a personal access token.
	EnvToken = "DEVTOOL_GITLAB_TOKEN"
	// EnvJobToken is set by GitLab CI runners.
	EnvJobToken = "CI_JOB_TOKEN"
	// EnvServerURL overrides the GitLab server address.
	EnvServerURL = "CI_SERVER_URL"

	defaultServerURL = "https://gitlab.com"
)

// ErrMissingToken is returned when no authentication token can be found.
var ErrMissingToken = errors.New("no GitLab token: set " + EnvToken + " or run inside CI")

// NewClient builds an authenticated API client. The server and token
// arguments win over the environment; inside CI the job token is used as a
// fallback.
func NewClient(server, token string) (*glab.Client, error) {
	if strings.TrimSpace(server) == "" {
		server = os.Getenv(EnvServerURL)
	}
	if strings.TrimSpace(server) == "" {
		server = defaultServerURL
	}

	if strings.TrimSpace(token) != "" {
		return glab.NewClient(token, glab.WithBaseURL(server))
	}
	if token = os.Getenv(EnvToken); strings.TrimSpace(token) != "" {
		return glab.NewClient(token, glab.WithBaseURL(server))
	}
	if jobToken := os.Getenv(EnvJobToken); strings.TrimSpace(jobToken) != "" {
		return glab.NewJobClient(jobToken, glab.WithBaseURL(server))
	}
	return nil, ErrMissingToken
}
