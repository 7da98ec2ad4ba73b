package workspace

import (
	"path"
	"strings"
)

// Resolver maps import and module paths to workspace projects
type Resolver struct {
	table *ModuleTable
	roots map[string]string // project root -> project name
}

// NewResolver creates a resolver over the module table and known project roots
func NewResolver(table *ModuleTable, projects []*Project) *Resolver {
	roots := make(map[string]string, len(projects))
	for _, project := range projects {
		roots[Clean(project.Root)] = project.Name
	}
	return &Resolver{table: table, roots: roots}
}

// Resolve returns the project owning the import path, or false when the path is not a workspace one.
// The import is first located inside its module, then the candidate directory is walked upward until
// a registered project root is found; the workspace root itself terminates the walk.
func (r *Resolver) Resolve(importPath string) (string, bool) {
	mod, ok := r.table.Match(importPath)
	if !ok {
		return "", false
	}
	return r.ResolveIn(mod, importPath)
}

// ResolveIn resolves the import path against an already selected module
func (r *Resolver) ResolveIn(mod *Module, importPath string) (string, bool) {
	relative := strings.TrimPrefix(strings.TrimPrefix(importPath, mod.Path), "/")
	candidate := Clean(path.Join(mod.Dir, relative))
	for candidate != "." && candidate != "/" {
		if name, ok := r.roots[candidate]; ok {
			return name, true
		}
		candidate = path.Dir(candidate)
	}
	return "", false
}
