package gitlabcmd_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	glab "gitlab.com/gitlab-org/api/client-go"

	gitlabcmd "github.com/bioidiap/idiap-devtools/cmd/devtool/gitlabcmd"
	"github.com/bioidiap/idiap-devtools/pkg/gitlab"
)

type stubLister struct {
	mrs []*glab.BasicMergeRequest
	err error
}

func (s *stubLister) ListProjectMergeRequests(any, *glab.ListProjectMergeRequestsOptions, ...glab.RequestOptionFunc) ([]*glab.BasicMergeRequest, *glab.Response, error) {
	return s.mrs, &glab.Response{NextPage: 0}, s.err
}

type stubReleaser struct {
	tags     []string
	files    map[string]string
	commits  int
	releases int
}

func (s *stubReleaser) GetProject(any, *glab.GetProjectOptions, ...glab.RequestOptionFunc) (*glab.Project, *glab.Response, error) {
	return &glab.Project{DefaultBranch: "main"}, nil, nil
}

func (s *stubReleaser) ListTags(any, *glab.ListTagsOptions, ...glab.RequestOptionFunc) ([]*glab.Tag, *glab.Response, error) {
	out := make([]*glab.Tag, 0, len(s.tags))
	for _, name := range s.tags {
		out = append(out, &glab.Tag{Name: name})
	}
	return out, &glab.Response{NextPage: 0}, nil
}

func (s *stubReleaser) GetRawFile(_ any, fileName string, _ *glab.GetRawFileOptions, _ ...glab.RequestOptionFunc) ([]byte, *glab.Response, error) {
	return []byte(s.files[fileName]), nil, nil
}

func (s *stubReleaser) CreateCommit(any, *glab.CreateCommitOptions, ...glab.RequestOptionFunc) (*glab.Commit, *glab.Response, error) {
	s.commits++
	return &glab.Commit{}, nil, nil
}

func (s *stubReleaser) CreateRelease(_ any, opt *glab.CreateReleaseOptions, _ ...glab.RequestOptionFunc) (*glab.Release, *glab.Response, error) {
	s.releases++
	return &glab.Release{TagName: *opt.TagName}, nil, nil
}

func (s *stubReleaser) ListProjectPipelines(any, *glab.ListProjectPipelinesOptions, ...glab.RequestOptionFunc) ([]*glab.PipelineInfo, *glab.Response, error) {
	return []*glab.PipelineInfo{{ID: 11}}, nil, nil
}

func (s *stubReleaser) GetPipeline(any, int, ...glab.RequestOptionFunc) (*glab.Pipeline, *glab.Response, error) {
	return &glab.Pipeline{ID: 11, Status: "success"}, nil, nil
}

func servicesFor(s *stubReleaser) gitlab.ReleaseServices {
	return gitlab.ReleaseServices{
		Projects: s, Tags: s, Files: s,
		Commits: s, Releases: s, Pipelines: s,
	}
}

func newCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, out
}

func TestGitlabCommandRegistersSubcommands(t *testing.T) {
	cmd := gitlabcmd.NewGitlabCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"changelog", "release"} {
		if !names[expected] {
			t.Fatalf("expected subcommand %s to be registered", expected)
		}
	}
}

func TestChangelogCommandRequiresProject(t *testing.T) {
	cmd, _ := newCommand()
	err := gitlabcmd.RunChangelogForTest(cmd, gitlabcmd.ChangelogOptions{}, gitlabcmd.ChangelogDeps{})
	if !errors.Is(err, gitlabcmd.ErrProjectRequired()) {
		t.Fatalf("expected project-required error, got %v", err)
	}
}

func TestChangelogCommandRendersEntries(t *testing.T) {
	merged := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{mrs: []*glab.BasicMergeRequest{
		{IID: 7, Title: "Add feature", MergedAt: &merged, Author: &glab.BasicUser{Username: "jdoe"}},
	}}
	cmd, out := newCommand()

	opts := gitlabcmd.ChangelogOptions{Project: "group/mypkg", Heading: "Changes"}
	deps := gitlabcmd.ChangelogDeps{
		Lister: func(string, string) (gitlab.MergeRequestLister, error) { return lister, nil },
	}

	if err := gitlabcmd.RunChangelogForTest(cmd, opts, deps); err != nil {
		t.Fatalf("run changelog: %v", err)
	}
	for _, expected := range []string{
		"## Changes", "!7 Add feature", "@jdoe",
		`"phase":"changelog"`, `"category":"remote"`, "merge requests collected",
	} {
		if !strings.Contains(out.String(), expected) {
			t.Fatalf("expected output to contain %q, got %q", expected, out.String())
		}
	}
}

func TestChangelogCommandRejectsBadSince(t *testing.T) {
	cmd, _ := newCommand()
	opts := gitlabcmd.ChangelogOptions{Project: "group/mypkg", Since: "tomorrow"}
	err := gitlabcmd.RunChangelogForTest(cmd, opts, gitlabcmd.ChangelogDeps{
		Lister: func(string, string) (gitlab.MergeRequestLister, error) { return &stubLister{}, nil },
	})
	if err == nil || !strings.Contains(err.Error(), "--since") {
		t.Fatalf("expected since parse error, got %v", err)
	}
}

func TestReleaseCommandDryRun(t *testing.T) {
	releaser := &stubReleaser{
		tags: []string{"v2.0.0"},
		files: map[string]string{
			"README.md":      "# mypkg\n",
			"pyproject.toml": "[project]\nname = \"mypkg\"\nversion = \"2.0.0\"\n",
		},
	}
	cmd, out := newCommand()

	opts := gitlabcmd.ReleaseOptions{Project: "group/mypkg", Bump: "minor", DryRun: true}
	deps := gitlabcmd.ReleaseDeps{
		Services: func(string, string) (gitlab.ReleaseServices, error) {
			return servicesFor(releaser), nil
		},
	}

	if err := gitlabcmd.RunReleaseForTest(cmd, opts, deps); err != nil {
		t.Fatalf("run release: %v", err)
	}
	if !strings.Contains(out.String(), "Would release v2.1.0") {
		t.Fatalf("expected dry-run notice, got %q", out.String())
	}
	if releaser.commits != 0 || releaser.releases != 0 {
		t.Fatalf("expected no writes under dry-run")
	}
}

func TestReleaseCommandWaitsForPipeline(t *testing.T) {
	releaser := &stubReleaser{
		tags: []string{"v2.0.0"},
		files: map[string]string{
			"README.md":      "# mypkg\n",
			"pyproject.toml": "[project]\nname = \"mypkg\"\nversion = \"2.0.0\"\n",
		},
	}
	cmd, out := newCommand()

	opts := gitlabcmd.ReleaseOptions{Project: "group/mypkg", Bump: "patch", Wait: true}
	deps := gitlabcmd.ReleaseDeps{
		Services: func(string, string) (gitlab.ReleaseServices, error) {
			return servicesFor(releaser), nil
		},
	}

	if err := gitlabcmd.RunReleaseForTest(cmd, opts, deps); err != nil {
		t.Fatalf("run release: %v", err)
	}
	if !strings.Contains(out.String(), "Released v2.0.1") {
		t.Fatalf("expected release notice, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Pipeline 11 succeeded") {
		t.Fatalf("expected pipeline wait to succeed, got %q", out.String())
	}
	for _, expected := range []string{`"phase":"release"`, `"category":"remote"`, "release created"} {
		if !strings.Contains(out.String(), expected) {
			t.Fatalf("expected output to contain %q, got %q", expected, out.String())
		}
	}
	if releaser.commits != 2 || releaser.releases != 1 {
		t.Fatalf("expected two commits and one release, got %d/%d", releaser.commits, releaser.releases)
	}
}

func TestReleaseCommandUnknownBump(t *testing.T) {
	cmd, _ := newCommand()
	opts := gitlabcmd.ReleaseOptions{Project: "group/mypkg", Bump: "huge"}
	err := gitlabcmd.RunReleaseForTest(cmd, opts, gitlabcmd.ReleaseDeps{
		Services: func(string, string) (gitlab.ReleaseServices, error) {
			return servicesFor(&stubReleaser{}), nil
		},
	})
	if !errors.Is(err, gitlab.ErrUnknownBump) {
		t.Fatalf("expected unknown bump error, got %v", err)
	}
}
