package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `module github.com/workspace/app

go 1.23.4

require github.com/acme/single v0.3.0

require (
	github.com/workspace/b v1.0.0
	github.com/acme/lib v1.2.0 // indirect
	"github.com/acme/quoted" "v0.1.0"
	this line is not a requirement at all
)

replace github.com/workspace/b => ../b

replace (
	github.com/acme/lib v1.2.0 => github.com/fork/lib v1.2.1
	broken replace line
)
`

func TestParse(t *testing.T) {
	parsed := Parse([]byte(sampleManifest))
	assert.Equal(t, "github.com/workspace/app", parsed.Module)
	assert.Equal(t, "1.23.4", parsed.Go)

	var paths []string
	for _, req := range parsed.Requires {
		paths = append(paths, req.Path)
	}
	assert.Equal(t, []string{
		"github.com/acme/single",
		"github.com/workspace/b",
		"github.com/acme/lib",
		"github.com/acme/quoted",
	}, paths)
	assert.Equal(t, Indirect, parsed.Requirement("github.com/acme/lib").Collection)
	assert.Equal(t, Direct, parsed.Requirement("github.com/workspace/b").Collection)
	assert.Equal(t, "v0.1.0", parsed.Requirement("github.com/acme/quoted").Version)
	require.Len(t, parsed.Replaces, 2)
	assert.True(t, parsed.Replaces[0].IsLocal())
	assert.Equal(t, "v1.2.1", parsed.Replaces[1].NewVersion)
}

func TestManifest_Dependencies(t *testing.T) {
	deps := Parse([]byte(sampleManifest)).Dependencies()
	tests := []struct {
		description string
		path        string
		expected    string
		collection  Collection
	}{
		{description: "local replace", path: "github.com/workspace/b", expected: LocalVersion, collection: Direct},
		{description: "versioned replace", path: "github.com/acme/lib", expected: "v1.2.1", collection: Indirect},
		{description: "single line", path: "github.com/acme/single", expected: "v0.3.0", collection: Direct},
	}
	for _, tc := range tests {
		dep, ok := deps[tc.path]
		if !assert.True(t, ok, tc.description) {
			continue
		}
		assert.Equal(t, tc.expected, dep.ResolvedVersion, tc.description)
		assert.Equal(t, tc.collection, dep.Collection, tc.description)
	}
}

func TestModulePath(t *testing.T) {
	tests := []struct {
		description string
		content     string
		expected    string
	}{
		{description: "plain", content: "module github.com/a/b\n", expected: "github.com/a/b"},
		{description: "quoted", content: "module \"github.com/a/b\"\n", expected: "github.com/a/b"},
		{description: "after comment", content: "// header\nmodule example.com/x // trailing\n", expected: "example.com/x"},
		{description: "missing", content: "go 1.22\n", expected: ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, ModulePath([]byte(tc.content)), tc.description)
	}
}

func TestParseWork(t *testing.T) {
	content := `go 1.23

use ./apps/api

use (
	./libs/a // first
	./libs/b
)
`
	assert.Equal(t, []string{"./apps/api", "./libs/a", "./libs/b"}, ParseWork([]byte(content)))
}

type mapSource map[string]string

func (m mapSource) Read(_ context.Context, relPath string) ([]byte, error) {
	content, ok := m[relPath]
	if !ok {
		return nil, errors.New("missing")
	}
	return []byte(content), nil
}

func (m mapSource) Exists(_ context.Context, relPath string) bool {
	_, ok := m[relPath]
	return ok
}

func TestLoad(t *testing.T) {
	source := mapSource{"libs/b/go.mod": "module github.com/workspace/b\n"}
	parsed, content, err := Load(context.Background(), source, "libs/b")
	require.NoError(t, err)
	assert.Equal(t, "github.com/workspace/b", parsed.Module)
	assert.NotEmpty(t, content)

	_, _, err = Load(context.Background(), source, "libs/missing")
	assert.True(t, errors.Is(err, ErrManifestNotFound))
}
