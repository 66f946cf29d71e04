package gitlab

import (
	"context"
	"fmt"
	"strings"

	glab "gitlab.com/gitlab-org/api/client-go"
)

// Narrow views of the API services the release flow touches, so tests can
// stub them without a server.
type (
	ProjectGetter interface {
		GetProject(pid any, opt *glab.GetProjectOptions, options ...glab.RequestOptionFunc) (*glab.Project, *glab.Response, error)
	}
	TagLister interface {
		ListTags(pid any, opt *glab.ListTagsOptions, options ...glab.RequestOptionFunc) ([]*glab.Tag, *glab.Response, error)
	}
	RawFileGetter interface {
		GetRawFile(pid any, fileName string, opt *glab.GetRawFileOptions, options ...glab.RequestOptionFunc) ([]byte, *glab.Response, error)
	}
	CommitCreator interface {
		CreateCommit(pid any, opt *glab.CreateCommitOptions, options ...glab.RequestOptionFunc) (*glab.Commit, *glab.Response, error)
	}
	ReleaseCreator interface {
		CreateRelease(pid any, opt *glab.CreateReleaseOptions, options ...glab.RequestOptionFunc) (*glab.Release, *glab.Response, error)
	}
)

// ReleaseServices bundles the API surfaces used by the release flow. The
// fields map one-to-one onto a *glab.Client's service fields.
type ReleaseServices struct {
	Projects ProjectGetter
	Tags     TagLister
	Files    RawFileGetter
	Commits  CommitCreator
	Releases ReleaseCreator

	// Pipelines is optional; when present, the id of the pipeline the
	// release triggered is reported so callers can wait on it.
	Pipelines PipelineService
}

// ServicesFromClient adapts a full API client.
func ServicesFromClient(c *glab.Client) ReleaseServices {
	return ReleaseServices{
		Projects:  c.Projects,
		Tags:      c.Tags,
		Files:     c.RepositoryFiles,
		Commits:   c.Commits,
		Releases:  c.Releases,
		Pipelines: c.Pipelines,
	}
}

// ReleaseOptions configure one release run.
type ReleaseOptions struct {
	Bump        Bump
	Description string
	DryRun      bool
}

// ReleaseResult reports what the run did (or, under dry-run, would do).
type ReleaseResult struct {
	TagName        string
	PreviousTag    string
	DefaultBranch  string
	CommittedFiles []string

	// PipelineID is the pipeline running for the release tag, zero when
	// unknown or under dry-run.
	PipelineID int
}

// releaseManagedFiles are rewritten around a release: pinned to the tag
// for the release commit, then pointed back at the development branch.
var releaseManagedFiles = []string{"README.md", "pyproject.toml"}

// Release tags a new version of a project. The managed files are rewritten
// to reference the release, committed, the release is created on that
// commit, and the files are then reverted to development references with a
// CI-skipping commit. Under dry-run nothing is written to the server but
// the computed tag is still reported.
func Release(ctx context.Context, svc ReleaseServices, pid any, opts ReleaseOptions) (*ReleaseResult, error) {
	project, _, err := svc.Projects.GetProject(pid, nil, glab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	branch := project.DefaultBranch

	latest, err := latestReleasedVersion(ctx, svc.Tags, pid)
	if err != nil {
		return nil, err
	}

	tag, err := NextVersion(latest, opts.Bump)
	if err != nil {
		return nil, err
	}
	version := strings.TrimPrefix(tag, "v")

	contents := make(map[string]string, len(releaseManagedFiles))
	for _, name := range releaseManagedFiles {
		raw, _, err := svc.Files.GetRawFile(pid, name, &glab.GetRawFileOptions{Ref: glab.Ptr(branch)}, glab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", name, err)
		}
		contents[name] = string(raw)
	}

	released := map[string]string{}
	released["README.md"] = UpdateReadme(contents["README.md"], version, branch)
	released["pyproject.toml"], err = UpdatePyproject(contents["pyproject.toml"], version, branch)
	if err != nil {
		return nil, err
	}

	result := &ReleaseResult{
		TagName:        tag,
		PreviousTag:    latest,
		DefaultBranch:  branch,
		CommittedFiles: append([]string(nil), releaseManagedFiles...),
	}
	if opts.DryRun {
		return result, nil
	}

	if err := commitFiles(ctx, svc.Commits, pid, branch, released,
		fmt.Sprintf("Increased stable version to %s", version)); err != nil {
		return nil, err
	}

	createOpts := &glab.CreateReleaseOptions{
		Name:    glab.Ptr(tag),
		TagName: glab.Ptr(tag),
		Ref:     glab.Ptr(branch),
	}
	if opts.Description != "" {
		createOpts.Description = glab.Ptr(opts.Description)
	}
	if _, _, err := svc.Releases.CreateRelease(pid, createOpts, glab.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("create release %s: %w", tag, err)
	}

	if svc.Pipelines != nil {
		id, err := LatestPipelineID(ctx, svc.Pipelines, pid)
		if err != nil {
			return nil, err
		}
		result.PipelineID = id
	}

	// Point the managed files back at the development branch; skip CI so
	// the revert does not race the release pipeline.
	reverted := map[string]string{}
	reverted["README.md"] = UpdateReadme(released["README.md"], "", branch)
	reverted["pyproject.toml"], err = UpdatePyproject(released["pyproject.toml"], "", branch)
	if err != nil {
		return nil, err
	}
	if err := commitFiles(ctx, svc.Commits, pid, branch, reverted,
		fmt.Sprintf("Increased latest version to %s [skip ci]", version)); err != nil {
		return nil, err
	}

	return result, nil
}

func latestReleasedVersion(ctx context.Context, tags TagLister, pid any) (string, error) {
	opt := &glab.ListTagsOptions{ListOptions: glab.ListOptions{PerPage: 100, Page: 1}}
	var names []string
	for {
		page, resp, err := tags.ListTags(pid, opt, glab.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("list tags: %w", err)
		}
		for _, tag := range page {
			names = append(names, tag.Name)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return LatestTagName(names), nil
}

func commitFiles(ctx context.Context, commits CommitCreator, pid any, branch string, files map[string]string, message string) error {
	actions := make([]*glab.CommitActionOptions, 0, len(files))
	for _, name := range releaseManagedFiles {
		content, ok := files[name]
		if !ok {
			continue
		}
		actions = append(actions, &glab.CommitActionOptions{
			Action:   glab.Ptr(glab.FileUpdate),
			FilePath: glab.Ptr(name),
			Content:  glab.Ptr(content),
		})
	}

	opt := &glab.CreateCommitOptions{
		Branch:        glab.Ptr(branch),
		CommitMessage: glab.Ptr(message),
		Actions:       actions,
	}
	if _, _, err := commits.CreateCommit(pid, opt, glab.WithContext(ctx)); err != nil {
		return fmt.Errorf("commit %q: %w", message, err)
	}
	return nil
}
