package graph

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/viant/gonx/imports"
	"github.com/viant/gonx/logger"
	"github.com/viant/gonx/metrics"
	"github.com/viant/gonx/workspace"
)

// Builder produces dependency edges between workspace projects
type Builder struct {
	extractor imports.Extractor
	match     MatcherFn
	logger    *log.Logger
}

// NewBuilder creates a builder
func NewBuilder(opts ...Option) *Builder {
	ret := &Builder{
		extractor: imports.Scanner{},
		match:     GolangFiles,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = logger.Logger
	}
	return ret
}

// Build scans the files of every project and emits one edge per (file, target project) pair.
// When files is nil the file map is collected from the tree. Self edges and imports that do
// not resolve to a workspace project are dropped.
func (b *Builder) Build(ctx context.Context, tree workspace.Tree, snapshot *workspace.Snapshot, files FileMap) ([]*Edge, error) {
	if files == nil {
		var err error
		if files, err = b.CollectFiles(ctx, tree, snapshot.Projects); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var edges []*Edge
	for _, name := range names {
		for _, file := range files[name] {
			if !b.match(file) {
				continue
			}
			for _, target := range b.scanFile(ctx, tree, snapshot.Resolver, file) {
				if target == name {
					continue
				}
				edges = append(edges, &Edge{Type: Static, Source: name, Target: target, SourceFile: file})
			}
		}
	}
	metrics.DependencyEdges.Add(float64(len(edges)))
	return edges, nil
}

// scanFile returns the distinct projects imported by the file; failures are logged and yield what was found so far
func (b *Builder) scanFile(ctx context.Context, tree workspace.Tree, resolver *workspace.Resolver, file string) (targets []string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("import scan aborted", "file", file, "error", r)
		}
	}()
	src, err := tree.Read(ctx, file)
	if err != nil {
		b.logger.Warn("failed to read source file", "file", file, "error", err)
		return nil
	}
	seen := map[string]bool{}
	for importPath := range b.extractor.Imports(src) {
		target, ok := resolver.Resolve(importPath)
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets
}

// CollectFiles walks each project root for matching files; nested project roots belong to their own project
func (b *Builder) CollectFiles(ctx context.Context, tree workspace.Tree, projects []*workspace.Project) (FileMap, error) {
	roots := make(map[string]bool, len(projects))
	for _, project := range projects {
		roots[workspace.Clean(project.Root)] = true
	}
	ret := FileMap{}
	for _, project := range projects {
		root := workspace.Clean(project.Root)
		owns := func(dir string) bool {
			for ; dir != root && dir != "." && dir != "/"; dir = path.Dir(dir) {
				if roots[dir] || excludedDirs[path.Base(dir)] {
					return false
				}
			}
			return true
		}
		err := tree.Walk(ctx, root, func(relPath string, isDir bool) (bool, error) {
			if isDir {
				return owns(relPath), nil
			}
			if b.match(relPath) && owns(path.Dir(relPath)) {
				ret[project.Name] = append(ret[project.Name], relPath)
			}
			return true, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to collect files of %s: %w", project.Name, err)
		}
		sort.Strings(ret[project.Name])
	}
	return ret, nil
}

var excludedDirs = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	".git":         true,
	"node_modules": true,
}
