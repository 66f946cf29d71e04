package gitlab

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePyproject = `[project]
name = "mypkg"
version = "1.2.3b0"

[project.urls]
documentation = "https://docs.example/mypkg/main/"

[build-system]
requires = ["setuptools"]
`

func decodePyproject(t *testing.T, contents string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, toml.Unmarshal([]byte(contents), &doc))
	return doc
}

func TestUpdatePyprojectSetsReleaseVersion(t *testing.T) {
	t.Parallel()
	out, err := UpdatePyproject(samplePyproject, "1.2.3", "main")
	require.NoError(t, err)

	doc := decodePyproject(t, out)
	project := doc["project"].(map[string]any)
	assert.Equal(t, "1.2.3", project["version"])

	urls := project["urls"].(map[string]any)
	assert.Equal(t, "https://docs.example/mypkg/v1.2.3/", urls["documentation"])
}

func TestUpdatePyprojectBumpsToNextBeta(t *testing.T) {
	t.Parallel()
	released, err := UpdatePyproject(samplePyproject, "1.2.3", "main")
	require.NoError(t, err)

	out, err := UpdatePyproject(released, "", "main")
	require.NoError(t, err)

	doc := decodePyproject(t, out)
	project := doc["project"].(map[string]any)
	assert.Equal(t, "1.2.4b0", project["version"])

	urls := project["urls"].(map[string]any)
	assert.Equal(t, "https://docs.example/mypkg/main/", urls["documentation"])
}

func TestUpdatePyprojectNonPEP440VersionLeftAlone(t *testing.T) {
	t.Parallel()
	contents := `[project]
name = "mypkg"
version = "rolling"
`
	out, err := UpdatePyproject(contents, "1.0.0", "main")
	require.NoError(t, err)

	doc := decodePyproject(t, out)
	project := doc["project"].(map[string]any)
	assert.Equal(t, "rolling", project["version"])
}

func TestUpdatePyprojectMissingProjectTable(t *testing.T) {
	t.Parallel()
	_, err := UpdatePyproject("[tool.black]\nline-length = 80\n", "1.0.0", "main")
	require.Error(t, err)
}

func TestUpdatePyprojectMalformed(t *testing.T) {
	t.Parallel()
	_, err := UpdatePyproject("[project\nname=", "1.0.0", "main")
	require.Error(t, err)
}
