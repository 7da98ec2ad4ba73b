package workspace

import (
	"context"
	"fmt"
	"sort"
)

// Snapshot is the per-invocation workspace context: projects, module table and resolver.
// It is built once and never mutated afterwards, so it can be shared freely.
type Snapshot struct {
	Projects []*Project
	Modules  *ModuleTable
	Resolver *Resolver
	byName   map[string]*Project
}

// NewSnapshot assembles a snapshot from a host supplied project list and module table
func NewSnapshot(projects []*Project, modules *ModuleTable) *Snapshot {
	sorted := make([]*Project, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	byName := make(map[string]*Project, len(sorted))
	for _, project := range sorted {
		byName[project.Name] = project
	}
	return &Snapshot{
		Projects: sorted,
		Modules:  modules,
		Resolver: NewResolver(modules, sorted),
		byName:   byName,
	}
}

// Load discovers projects in the tree and indexes their module paths
func Load(ctx context.Context, tree Tree) (*Snapshot, error) {
	projects, err := Discover(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to discover projects: %w", err)
	}
	return NewSnapshot(projects, LoadModuleTable(ctx, tree, projects)), nil
}

// Project returns a project by name
func (s *Snapshot) Project(name string) (*Project, bool) {
	project, ok := s.byName[name]
	return project, ok
}

// ModuleOf returns the module rooted at the project's directory
func (s *Snapshot) ModuleOf(projectName string) (*Module, bool) {
	project, ok := s.byName[projectName]
	if !ok {
		return nil, false
	}
	return s.Modules.ByDir(project.Root)
}

// ProjectOfModule returns the project whose root holds the module with the exact path
func (s *Snapshot) ProjectOfModule(modulePath string) (*Project, bool) {
	mod, ok := s.Modules.Lookup(modulePath)
	if !ok {
		return nil, false
	}
	for _, project := range s.Projects {
		if Clean(project.Root) == mod.Dir {
			return project, true
		}
	}
	return nil, false
}
