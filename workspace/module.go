package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/gonx/manifest"
	"golang.org/x/tools/go/packages"
)

// Module represents a workspace module: its declared path and the directory holding its manifest
type Module struct {
	Path string
	Dir  string // workspace relative
}

// ModuleTable is the read-only module path -> module index shared by one engine invocation
type ModuleTable struct {
	modules []*Module
	byPath  map[string]*Module
	byDir   map[string]*Module
}

// NewModuleTable builds a table; modules are ordered by path descending so longer paths sharing a prefix come first
func NewModuleTable(modules ...*Module) *ModuleTable {
	ret := &ModuleTable{byPath: map[string]*Module{}, byDir: map[string]*Module{}}
	for _, candidate := range modules {
		if candidate == nil || candidate.Path == "" {
			continue
		}
		mod := &Module{Path: candidate.Path, Dir: Clean(candidate.Dir)}
		if _, ok := ret.byPath[mod.Path]; ok {
			continue
		}
		ret.modules = append(ret.modules, mod)
		ret.byPath[mod.Path] = mod
		ret.byDir[mod.Dir] = mod
	}
	sort.Slice(ret.modules, func(i, j int) bool {
		return ret.modules[i].Path > ret.modules[j].Path
	})
	return ret
}

// Modules returns the table entries
func (t *ModuleTable) Modules() []*Module {
	return t.modules
}

// Len returns number of modules
func (t *ModuleTable) Len() int {
	return len(t.modules)
}

// Lookup returns a module by its exact path
func (t *ModuleTable) Lookup(modulePath string) (*Module, bool) {
	mod, ok := t.byPath[modulePath]
	return mod, ok
}

// ByDir returns the module rooted at the workspace relative directory
func (t *ModuleTable) ByDir(dir string) (*Module, bool) {
	mod, ok := t.byDir[Clean(dir)]
	return mod, ok
}

// Match returns the module with the longest path that prefixes the import path on a segment boundary
func (t *ModuleTable) Match(importPath string) (*Module, bool) {
	var best *Module
	for _, mod := range t.modules {
		if !hasPathPrefix(importPath, mod.Path) {
			continue
		}
		if best == nil || len(mod.Path) > len(best.Path) {
			best = mod
		}
	}
	return best, best != nil
}

func hasPathPrefix(importPath, modulePath string) bool {
	if !strings.HasPrefix(importPath, modulePath) {
		return false
	}
	return len(importPath) == len(modulePath) || importPath[len(modulePath)] == '/'
}

// LoadModuleTable reads every project manifest and indexes the declared module paths.
// Unreadable or module-less manifests are skipped.
func LoadModuleTable(ctx context.Context, tree Tree, projects []*Project) *ModuleTable {
	var modules []*Module
	for _, project := range projects {
		content, err := tree.Read(ctx, project.ManifestPath())
		if err != nil {
			continue
		}
		if modulePath := manifest.ModulePath(content); modulePath != "" {
			modules = append(modules, &Module{Path: modulePath, Dir: project.Root})
		}
	}
	return NewModuleTable(modules...)
}

// ListModules asks the Go tooling for the main modules reachable from dir (all go.work members when
// dir holds a workspace file). Module directories are returned relative to dir.
func ListModules(ctx context.Context, dir string) ([]*Module, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	cfg := &packages.Config{
		Context: ctx,
		Dir:     absDir,
		Mode:    packages.NeedName | packages.NeedModule,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to list modules in %s: %w", dir, err)
	}
	seen := map[string]bool{}
	var modules []*Module
	for _, pkg := range pkgs {
		mod := pkg.Module
		if mod == nil || !mod.Main || seen[mod.Path] {
			continue
		}
		seen[mod.Path] = true
		rel, err := filepath.Rel(absDir, mod.Dir)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		modules = append(modules, &Module{Path: mod.Path, Dir: filepath.ToSlash(rel)})
	}
	return modules, nil
}
