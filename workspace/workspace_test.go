package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gonx/workspace"
)

func newWorkspace(t *testing.T, files map[string]string) workspace.Tree {
	t.Helper()
	root := t.TempDir()
	for relPath, content := range files {
		location := filepath.Join(root, filepath.FromSlash(relPath))
		require.NoError(t, os.MkdirAll(filepath.Dir(location), 0755))
		require.NoError(t, os.WriteFile(location, []byte(content), 0644))
	}
	return workspace.NewTree(root)
}

func TestModuleTable_Match(t *testing.T) {
	table := workspace.NewModuleTable(
		&workspace.Module{Path: "github.com/workspace", Dir: "."},
		&workspace.Module{Path: "github.com/workspace/b", Dir: "libs/b"},
		&workspace.Module{Path: "github.com/workspace/bc", Dir: "libs/bc"},
		&workspace.Module{Path: "github.com/workspace/b", Dir: "dup"},
	)
	tests := []struct {
		description string
		importPath  string
		expected    string
		matched     bool
	}{
		{description: "longest prefix wins", importPath: "github.com/workspace/b/pkg/sub", expected: "github.com/workspace/b", matched: true},
		{description: "exact module path", importPath: "github.com/workspace/bc", expected: "github.com/workspace/bc", matched: true},
		{description: "segment boundary", importPath: "github.com/workspace/bcd/x", expected: "github.com/workspace", matched: true},
		{description: "outside workspace", importPath: "github.com/other/x", matched: false},
	}
	for _, tc := range tests {
		mod, ok := table.Match(tc.importPath)
		if !assert.Equal(t, tc.matched, ok, tc.description) || !ok {
			continue
		}
		assert.Equal(t, tc.expected, mod.Path, tc.description)
	}
	assert.Equal(t, 3, table.Len())
	mod, ok := table.Lookup("github.com/workspace/b")
	require.True(t, ok)
	assert.Equal(t, "libs/b", mod.Dir)
}

func TestResolver_Resolve(t *testing.T) {
	projects := []*workspace.Project{
		{Name: "root", Root: "."},
		{Name: "a", Root: "apps/a"},
		{Name: "b", Root: "libs/b"},
		{Name: "nested", Root: "libs/b/nested"},
	}
	table := workspace.NewModuleTable(
		&workspace.Module{Path: "github.com/workspace", Dir: "."},
		&workspace.Module{Path: "github.com/workspace/a", Dir: "apps/a"},
		&workspace.Module{Path: "github.com/workspace/b", Dir: "libs/b"},
	)
	resolver := workspace.NewResolver(table, projects)
	tests := []struct {
		description string
		importPath  string
		expected    string
		resolved    bool
	}{
		{description: "package in module", importPath: "github.com/workspace/b/pkg/sub", expected: "b", resolved: true},
		{description: "module root", importPath: "github.com/workspace/b", expected: "b", resolved: true},
		{description: "nested project root wins", importPath: "github.com/workspace/b/nested/x", expected: "nested", resolved: true},
		{description: "root module package outside projects", importPath: "github.com/workspace/tools", resolved: false},
		{description: "root module package inside project dir", importPath: "github.com/workspace/apps/a/util", expected: "a", resolved: true},
		{description: "external", importPath: "github.com/other/x", resolved: false},
	}
	for _, tc := range tests {
		name, ok := resolver.Resolve(tc.importPath)
		assert.Equal(t, tc.resolved, ok, tc.description)
		assert.Equal(t, tc.expected, name, tc.description)
	}
}

func TestLoad(t *testing.T) {
	tree := newWorkspace(t, map[string]string{
		"go.mod":                   "module github.com/workspace\n\ngo 1.23\n",
		"apps/a/go.mod":            "module github.com/workspace/a\n\ngo 1.23\n",
		"apps/a/main.go":           "package main\n\nfunc main() {}\n",
		"libs/b/go.mod":            "module github.com/workspace/b\n",
		"libs/b/b.go":              "package b\n",
		"libs/c/go.mod":            "go 1.23\n",
		"libs/c/cmd/c/main.go":     "package main\n",
		"vendor/x/go.mod":          "module github.com/vendored/x\n",
		"libs/b/testdata/m/go.mod": "module github.com/testdata/m\n",
	})
	ctx := context.Background()
	snapshot, err := workspace.Load(ctx, tree)
	require.NoError(t, err)

	var names []string
	for _, project := range snapshot.Projects {
		names = append(names, project.Name)
	}
	rootName := filepath.Base(tree.Root())
	assert.ElementsMatch(t, []string{rootName, "a", "b", "c"}, names)

	tests := []struct {
		description string
		name        string
		root        string
		kind        workspace.ProjectType
	}{
		{description: "main package", name: "a", root: "apps/a", kind: workspace.Application},
		{description: "plain library", name: "b", root: "libs/b", kind: workspace.Library},
		{description: "cmd folder", name: "c", root: "libs/c", kind: workspace.Application},
		{description: "workspace root", name: rootName, root: ".", kind: workspace.Library},
	}
	for _, tc := range tests {
		project, ok := snapshot.Project(tc.name)
		if !assert.True(t, ok, tc.description) {
			continue
		}
		assert.Equal(t, tc.root, project.Root, tc.description)
		assert.Equal(t, tc.kind, project.Type, tc.description)
	}

	assert.Equal(t, 3, snapshot.Modules.Len())
	mod, ok := snapshot.ModuleOf("b")
	require.True(t, ok)
	assert.Equal(t, "github.com/workspace/b", mod.Path)
	_, ok = snapshot.ModuleOf("c")
	assert.False(t, ok)

	name, ok := snapshot.Resolver.Resolve("github.com/workspace/b/pkg/sub")
	assert.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestTree_ReadWrite(t *testing.T) {
	tree := newWorkspace(t, map[string]string{"libs/b/go.mod": "module x\n"})
	ctx := context.Background()
	data, err := tree.Read(ctx, "./libs/b/go.mod")
	require.NoError(t, err)
	assert.Equal(t, "module x\n", string(data))

	require.NoError(t, tree.Write(ctx, "libs/b/VERSION", []byte("1.0.0\n")))
	assert.True(t, tree.Exists(ctx, "libs/b/VERSION"))
	assert.False(t, tree.Exists(ctx, "libs/b/missing"))
	_, err = tree.Read(ctx, "libs/b/missing")
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	tests := []struct {
		description string
		input       string
		expected    string
	}{
		{description: "empty", input: "", expected: "."},
		{description: "dot slash", input: "./libs/b", expected: "libs/b"},
		{description: "leading slash", input: "/libs/b/", expected: "libs/b"},
		{description: "windows separators", input: `libs\b`, expected: "libs/b"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, workspace.Clean(tc.input), tc.description)
	}
}

func TestDiscover_WorkFile(t *testing.T) {
	tree := newWorkspace(t, map[string]string{
		"go.work":              "go 1.23\n\nuse (\n\t./apps/a\n\t./libs/b // shared\n)\n",
		"apps/a/go.mod":        "module github.com/workspace/a\n",
		"libs/b/go.mod":        "module github.com/workspace/b\n",
		"experiments/x/go.mod": "module github.com/workspace/x\n",
	})
	ctx := context.Background()
	projects, err := workspace.Discover(ctx, tree)
	require.NoError(t, err)
	var roots []string
	for _, project := range projects {
		roots = append(roots, project.Root)
	}
	assert.Equal(t, []string{"apps/a", "libs/b"}, roots)

	snapshot, err := workspace.Load(ctx, tree)
	require.NoError(t, err)
	_, ok := snapshot.Modules.Lookup("github.com/workspace/x")
	assert.False(t, ok)
	_, ok = snapshot.Resolver.Resolve("github.com/workspace/x/pkg")
	assert.False(t, ok)
}

func TestSnapshot_ProjectOfModule(t *testing.T) {
	projects := []*workspace.Project{
		{Name: "a", Root: "apps/a"},
		{Name: "b", Root: "libs/b"},
	}
	snapshot := workspace.NewSnapshot(projects, workspace.NewModuleTable(
		&workspace.Module{Path: "github.com/workspace/a", Dir: "apps/a"},
		&workspace.Module{Path: "github.com/workspace/b", Dir: "./libs/b"},
		&workspace.Module{Path: "github.com/workspace/orphan", Dir: "tools/orphan"},
	))
	tests := []struct {
		description string
		modulePath  string
		expected    string
		found       bool
	}{
		{description: "module of project", modulePath: "github.com/workspace/b", expected: "b", found: true},
		{description: "package path is not a module", modulePath: "github.com/workspace/b/pkg", found: false},
		{description: "module without project", modulePath: "github.com/workspace/orphan", found: false},
	}
	for _, tc := range tests {
		project, ok := snapshot.ProjectOfModule(tc.modulePath)
		if !assert.Equal(t, tc.found, ok, tc.description) || !ok {
			continue
		}
		assert.Equal(t, tc.expected, project.Name, tc.description)
	}
}
