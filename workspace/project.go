package workspace

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/viant/gonx/manifest"
)

const (
	// ManifestFile is the module manifest name
	ManifestFile = "go.mod"
	// WorkFile is the multi-module workspace file name
	WorkFile = "go.work"
)

// ProjectType distinguishes buildable applications from libraries
type ProjectType string

const (
	Application ProjectType = "application"
	Library     ProjectType = "library"
)

// Project represents a workspace project rooted at a module manifest
type Project struct {
	Name string
	Root string // workspace relative, "." for the workspace root
	Type ProjectType
}

// ManifestPath returns the project's manifest location
func (p *Project) ManifestPath() string {
	return path.Join(p.Root, ManifestFile)
}

// NameFromRoot returns a readable project name from its root directory.
// NOTE: only the last path segment is used, two projects with the same
// directory name in different folders collide.
func NameFromRoot(root string) string {
	return path.Base(Clean(root))
}

var skippedDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	"testdata":     true,
	"dist":         true,
}

// Discover walks the tree and returns one project per module manifest, sorted by root.
// When the workspace root holds a go.work file only its use directories become projects.
func Discover(ctx context.Context, tree Tree) ([]*Project, error) {
	var roots []string
	err := tree.Walk(ctx, ".", func(relPath string, isDir bool) (bool, error) {
		if isSkipped(relPath) {
			return false, nil
		}
		if isDir {
			return true, nil
		}
		if path.Base(relPath) == ManifestFile {
			roots = append(roots, path.Dir(relPath))
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if tree.Exists(ctx, ManifestFile) && !contains(roots, ".") {
		roots = append(roots, ".")
	}
	if members, ok := workMembers(ctx, tree); ok {
		var listed []string
		for _, root := range roots {
			if members[root] {
				listed = append(listed, root)
			}
		}
		roots = listed
	}
	sort.Strings(roots)
	var projects []*Project
	for _, root := range roots {
		name := NameFromRoot(root)
		if root == "." {
			name = NameFromRoot(tree.Root())
		}
		projects = append(projects, &Project{
			Name: name,
			Root: root,
			Type: detectType(ctx, tree, root),
		})
	}
	return projects, nil
}

// workMembers returns the module directories listed by the root go.work use directives;
// false when the workspace has no go.work file
func workMembers(ctx context.Context, tree Tree) (map[string]bool, bool) {
	if !tree.Exists(ctx, WorkFile) {
		return nil, false
	}
	content, err := tree.Read(ctx, WorkFile)
	if err != nil {
		return nil, false
	}
	members := map[string]bool{}
	for _, dir := range manifest.ParseWork(content) {
		members[Clean(dir)] = true
	}
	return members, true
}

// detectType reports an application when the root holds a main package or a cmd folder
func detectType(ctx context.Context, tree Tree, root string) ProjectType {
	mainFile := path.Join(root, "main.go")
	if tree.Exists(ctx, mainFile) {
		if content, err := tree.Read(ctx, mainFile); err == nil {
			text := string(content)
			if strings.Contains(text, "package main") && strings.Contains(text, "func main(") {
				return Application
			}
		}
	}
	if tree.Exists(ctx, path.Join(root, "cmd")) {
		return Application
	}
	return Library
}

// isSkipped reports whether any segment of the path is an excluded directory
func isSkipped(relPath string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if skippedDirs[segment] {
			return true
		}
	}
	return false
}

func contains(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
