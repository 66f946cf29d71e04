package gitlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleReadme = `# mypkg

[![docs](https://img.shields.io/badge/docs-latest-orange.svg)](https://mygitlab.example/docs/mypkg/main/)
[![pipeline](https://mygitlab.example/group/mypkg/badges/main/pipeline.svg)](https://mygitlab.example/group/mypkg/commits/main)

See the docs-latest server at https://docs.example/docs-latest/mypkg/main/index.html
Unrelated link: https://other.example/main/page
`

func TestUpdateReadmePinsRelease(t *testing.T) {
	t.Parallel()
	out := UpdateReadme(sampleReadme, "1.2.3", "main")

	assert.Contains(t, out, "badge/docs-v1.2.3-orange.svg")
	assert.Contains(t, out, "mygitlab.example/group/mypkg/badges/v1.2.3/pipeline.svg")
	assert.Contains(t, out, "docs-latest/mypkg/v1.2.3/index.html")
	// Lines without gitlab/doc-server markers keep their links.
	assert.Contains(t, out, "https://other.example/main/page")
}

func TestUpdateReadmeRevertsToBranch(t *testing.T) {
	t.Parallel()
	pinned := UpdateReadme(sampleReadme, "1.2.3", "main")
	reverted := UpdateReadme(pinned, "", "main")

	assert.Contains(t, reverted, "badge/docs-latest-orange.svg")
	assert.Contains(t, reverted, "badges/main/pipeline.svg")
	assert.NotContains(t, reverted, "v1.2.3")
}

func TestUpdateReadmeEndsWithNewline(t *testing.T) {
	t.Parallel()
	out := UpdateReadme("no trailing newline", "1.0.0", "main")
	assert.Equal(t, "no trailing newline\n", out)
}
