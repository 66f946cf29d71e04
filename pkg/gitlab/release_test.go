package gitlab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glab "gitlab.com/gitlab-org/api/client-go"
)

type fakeReleaseAPI struct {
	tags     []string
	files    map[string]string
	commits  []*glab.CreateCommitOptions
	releases []*glab.CreateReleaseOptions
}

func (f *fakeReleaseAPI) GetProject(any, *glab.GetProjectOptions, ...glab.RequestOptionFunc) (*glab.Project, *glab.Response, error) {
	return &glab.Project{DefaultBranch: "main", PathWithNamespace: "group/mypkg"}, nil, nil
}

func (f *fakeReleaseAPI) ListTags(_ any, _ *glab.ListTagsOptions, _ ...glab.RequestOptionFunc) ([]*glab.Tag, *glab.Response, error) {
	out := make([]*glab.Tag, 0, len(f.tags))
	for _, name := range f.tags {
		out = append(out, &glab.Tag{Name: name})
	}
	return out, &glab.Response{NextPage: 0}, nil
}

func (f *fakeReleaseAPI) GetRawFile(_ any, fileName string, _ *glab.GetRawFileOptions, _ ...glab.RequestOptionFunc) ([]byte, *glab.Response, error) {
	return []byte(f.files[fileName]), nil, nil
}

func (f *fakeReleaseAPI) CreateCommit(_ any, opt *glab.CreateCommitOptions, _ ...glab.RequestOptionFunc) (*glab.Commit, *glab.Response, error) {
	f.commits = append(f.commits, opt)
	return &glab.Commit{ShortID: "abc1234"}, nil, nil
}

func (f *fakeReleaseAPI) CreateRelease(_ any, opt *glab.CreateReleaseOptions, _ ...glab.RequestOptionFunc) (*glab.Release, *glab.Response, error) {
	f.releases = append(f.releases, opt)
	return &glab.Release{TagName: *opt.TagName}, nil, nil
}

func newFakeReleaseAPI() *fakeReleaseAPI {
	return &fakeReleaseAPI{
		tags: []string{"v1.2.2", "v1.2.3", "nightly"},
		files: map[string]string{
			"README.md":      sampleReadme,
			"pyproject.toml": samplePyproject,
		},
	}
}

func (f *fakeReleaseAPI) ListProjectPipelines(any, *glab.ListProjectPipelinesOptions, ...glab.RequestOptionFunc) ([]*glab.PipelineInfo, *glab.Response, error) {
	return []*glab.PipelineInfo{{ID: 42}}, nil, nil
}

func (f *fakeReleaseAPI) GetPipeline(any, int, ...glab.RequestOptionFunc) (*glab.Pipeline, *glab.Response, error) {
	return &glab.Pipeline{ID: 42, Status: "success"}, nil, nil
}

func servicesFor(f *fakeReleaseAPI) ReleaseServices {
	return ReleaseServices{Projects: f, Tags: f, Files: f, Commits: f, Releases: f, Pipelines: f}
}

func TestReleaseTagsNextPatchVersion(t *testing.T) {
	t.Parallel()
	fake := newFakeReleaseAPI()

	result, err := Release(context.Background(), servicesFor(fake), "group/mypkg", ReleaseOptions{
		Bump:        BumpPatch,
		Description: "bug fixes",
	})
	require.NoError(t, err)

	assert.Equal(t, "v1.2.4", result.TagName)
	assert.Equal(t, "1.2.3", result.PreviousTag)
	assert.Equal(t, "main", result.DefaultBranch)
	assert.Equal(t, 42, result.PipelineID)

	require.Len(t, fake.releases, 1)
	assert.Equal(t, "v1.2.4", *fake.releases[0].TagName)
	assert.Equal(t, "bug fixes", *fake.releases[0].Description)

	require.Len(t, fake.commits, 2)
	assert.Equal(t, "Increased stable version to 1.2.4", *fake.commits[0].CommitMessage)
	assert.Contains(t, *fake.commits[1].CommitMessage, "[skip ci]")

	// The release commit pins the README; the revert commit points back
	// at the branch.
	for _, action := range fake.commits[0].Actions {
		if *action.FilePath == "README.md" {
			assert.Contains(t, *action.Content, "v1.2.4")
		}
	}
	for _, action := range fake.commits[1].Actions {
		if *action.FilePath == "README.md" {
			assert.NotContains(t, *action.Content, "v1.2.4")
		}
	}
}

func TestReleaseDryRunWritesNothing(t *testing.T) {
	t.Parallel()
	fake := newFakeReleaseAPI()

	result, err := Release(context.Background(), servicesFor(fake), "group/mypkg", ReleaseOptions{
		Bump:   BumpMinor,
		DryRun: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "v1.3.0", result.TagName)
	assert.Zero(t, result.PipelineID)
	assert.Empty(t, fake.commits)
	assert.Empty(t, fake.releases)
}

func TestReleaseFirstEver(t *testing.T) {
	t.Parallel()
	fake := newFakeReleaseAPI()
	fake.tags = nil

	result, err := Release(context.Background(), servicesFor(fake), "group/mypkg", ReleaseOptions{
		Bump: BumpMajor,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", result.TagName)
	assert.Empty(t, result.PreviousTag)
}
