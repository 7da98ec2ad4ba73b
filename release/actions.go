package release

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/gonx/graph"
	"github.com/viant/gonx/manifest"
	"github.com/viant/gonx/workspace"
	"golang.org/x/mod/semver"
)

var _ Actions = (*GoActions)(nil)

// VersionFile is the optional plain text version file kept in a project root
const VersionFile = "VERSION"

// DependencyVersion is the declared version of a workspace dependency
type DependencyVersion struct {
	CurrentVersion string
	Collection     manifest.Collection
}

// Actions reads and writes versions for one project of a toolchain family
type Actions interface {
	ReadCurrentVersion(ctx context.Context) (*ResolvedVersion, error)
	ReadDependencyVersion(ctx context.Context, dependencyProject string) (*DependencyVersion, error)
	WriteVersion(ctx context.Context, newVersion string) ([]string, error)
	UpdateDependencies(ctx context.Context, updates map[string]string) ([]string, error)
}

// GoActions implements Actions for Go modules. The manifest holds no version, so current versions
// come from tags or the registry and a written version is kept pending for tagging.
type GoActions struct {
	project        *workspace.Project
	tree           workspace.Tree
	snapshot       *workspace.Snapshot
	resolver       *Resolver
	edges          []*graph.Edge
	useRegistry    bool
	pendingVersion string
}

// ActionsOption customises GoActions
type ActionsOption func(a *GoActions)

// WithEdges sets the known workspace dependency edges, used to declare discovered dependencies
func WithEdges(edges []*graph.Edge) ActionsOption {
	return func(a *GoActions) {
		a.edges = edges
	}
}

// WithRegistryLookup reads current versions from the registry instead of tags
func WithRegistryLookup(enabled bool) ActionsOption {
	return func(a *GoActions) {
		a.useRegistry = enabled
	}
}

// NewGoActions creates version actions for the named project
func NewGoActions(tree workspace.Tree, snapshot *workspace.Snapshot, resolver *Resolver, projectName string, opts ...ActionsOption) (*GoActions, error) {
	project, ok := snapshot.Project(projectName)
	if !ok {
		return nil, fmt.Errorf("unknown project: %s", projectName)
	}
	ret := &GoActions{project: project, tree: tree, snapshot: snapshot, resolver: resolver}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// ManifestPath returns the project manifest location
func (a *GoActions) ManifestPath() string {
	return a.project.ManifestPath()
}

// ReadSourceManifestVersion reports ZeroVersion with the manifest path, Go manifests carry no version
func (a *GoActions) ReadSourceManifestVersion(ctx context.Context) (string, string, error) {
	if !a.tree.Exists(ctx, a.ManifestPath()) {
		return "", "", fmt.Errorf("%w: %s", manifest.ErrManifestNotFound, a.ManifestPath())
	}
	return ZeroVersion, a.ManifestPath(), nil
}

// ReadCurrentVersion resolves the project version from tags, or from the registry when enabled
func (a *GoActions) ReadCurrentVersion(ctx context.Context) (*ResolvedVersion, error) {
	parsed, _, err := manifest.Load(ctx, a.tree, a.project.Root)
	if err != nil {
		return nil, err
	}
	if a.useRegistry {
		return a.resolver.FromRegistry(ctx, a.project.Name, parsed.Module), nil
	}
	return a.resolver.FromTags(ctx, a.project.Name), nil
}

// ReadDependencyVersion returns the version this project declares for a workspace dependency, nil when not declared
func (a *GoActions) ReadDependencyVersion(ctx context.Context, dependencyProject string) (*DependencyVersion, error) {
	parsed, _, err := manifest.Load(ctx, a.tree, a.project.Root)
	if err != nil {
		return nil, err
	}
	mod, ok := a.snapshot.ModuleOf(dependencyProject)
	if !ok {
		return nil, nil
	}
	dep, ok := parsed.Dependencies()[mod.Path]
	if !ok {
		return nil, nil
	}
	return &DependencyVersion{CurrentVersion: dep.ResolvedVersion, Collection: dep.Collection}, nil
}

// IsLocalDependency reports whether a version specifier denotes a filesystem replacement
func (a *GoActions) IsLocalDependency(versionSpecifier string) bool {
	return versionSpecifier == manifest.LocalVersion || manifest.IsLocalPath(versionSpecifier)
}

// WriteVersion keeps the version pending for tagging and refreshes the VERSION file when one exists
func (a *GoActions) WriteVersion(ctx context.Context, newVersion string) ([]string, error) {
	a.pendingVersion = newVersion
	location := path.Join(a.project.Root, VersionFile)
	if !a.tree.Exists(ctx, location) {
		return nil, nil
	}
	current, err := a.tree.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	content := newVersion
	if strings.HasSuffix(string(current), "\n") {
		content += "\n"
	}
	if string(current) == content {
		return nil, nil
	}
	if err := a.tree.Write(ctx, location, []byte(content)); err != nil {
		return nil, err
	}
	return []string{location}, nil
}

// PendingVersion returns the last written version
func (a *GoActions) PendingVersion() string {
	return a.pendingVersion
}

// PendingTag renders the tag to create for the pending version, empty when nothing was written
func (a *GoActions) PendingTag() string {
	if a.pendingVersion == "" {
		return ""
	}
	return FormatTag(a.resolver.Config().TagPattern(a.project.Name), a.project.Name, a.pendingVersion)
}

// UpdateDependencies rewrites require versions for the updated dependency projects (project name -> version).
// Workspace dependencies found through imports but not declared yet are added.
func (a *GoActions) UpdateDependencies(ctx context.Context, updates map[string]string) ([]string, error) {
	parsed, content, err := manifest.Load(ctx, a.tree, a.project.Root)
	if err != nil {
		return nil, err
	}
	versions := map[string]string{}
	for projectName, version := range updates {
		mod, ok := a.snapshot.ModuleOf(projectName)
		if !ok || mod.Path == parsed.Module {
			continue
		}
		versions[mod.Path] = ModuleVersion(version)
	}
	var discovered []string
	for _, target := range graph.Targets(a.edges, a.project.Name) {
		if mod, ok := a.snapshot.ModuleOf(target); ok {
			discovered = append(discovered, mod.Path)
		}
	}
	result := manifest.Rewrite(string(content), versions, discovered)
	if !result.Changed {
		return nil, nil
	}
	if err := a.tree.Write(ctx, a.ManifestPath(), []byte(result.Text)); err != nil {
		return nil, err
	}
	return []string{a.ManifestPath()}, nil
}

// ModuleVersion converts a release version into a module version: "1.2.3" becomes "v1.2.3"
func ModuleVersion(version string) string {
	if version == "" || strings.HasPrefix(version, "v") {
		return version
	}
	if semver.IsValid("v" + version) {
		return "v" + version
	}
	return version
}
