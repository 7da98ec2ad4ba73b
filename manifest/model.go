// Package manifest reads and rewrites Go module manifests (go.mod) with a tolerant line scanner.
package manifest

import "strings"

// Collection tells how a requirement is declared
type Collection string

const (
	// Direct is an ordinary require entry
	Direct Collection = "require"
	// Indirect is a require entry marked "// indirect"
	Indirect Collection = "indirect"
)

// LocalVersion is the resolved version of dependencies replaced by a filesystem path
const LocalVersion = "local"

// Requirement is one require entry
type Requirement struct {
	Path       string
	Version    string
	Collection Collection
	Line       int // zero based line index in the manifest text
}

// Replacement is one replace directive
type Replacement struct {
	Old        string
	OldVersion string
	New        string
	NewVersion string
	Line       int
}

// IsLocal reports whether the replacement points to a filesystem path
func (r *Replacement) IsLocal() bool {
	return IsLocalPath(r.New)
}

// IsLocalPath reports whether the replace target is a filesystem path
func IsLocalPath(target string) bool {
	return strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") || strings.HasPrefix(target, "/") ||
		target == "." || target == ".."
}

// Dependency is a requirement with replace directives applied
type Dependency struct {
	Path            string
	Version         string
	ResolvedVersion string
	Collection      Collection
	Replacement     *Replacement
}

// Manifest holds what the scanner recognised in a manifest
type Manifest struct {
	Module   string
	Go       string
	Requires []*Requirement
	Replaces []*Replacement
}

// Requirement returns the require entry for the module path
func (m *Manifest) Requirement(modulePath string) *Requirement {
	for _, req := range m.Requires {
		if req.Path == modulePath {
			return req
		}
	}
	return nil
}

// Replacement returns the replace directive for the module path and version; version-less directives match any version
func (m *Manifest) Replacement(modulePath, version string) *Replacement {
	var ret *Replacement
	for _, rep := range m.Replaces {
		if rep.Old != modulePath {
			continue
		}
		if rep.OldVersion == version {
			return rep
		}
		if rep.OldVersion == "" {
			ret = rep
		}
	}
	return ret
}

// Dependencies returns the declared requirements keyed by module path
func (m *Manifest) Dependencies() map[string]*Dependency {
	ret := make(map[string]*Dependency, len(m.Requires))
	for _, req := range m.Requires {
		dep := &Dependency{
			Path:            req.Path,
			Version:         req.Version,
			ResolvedVersion: req.Version,
			Collection:      req.Collection,
		}
		if rep := m.Replacement(req.Path, req.Version); rep != nil {
			dep.Replacement = rep
			switch {
			case rep.IsLocal():
				dep.ResolvedVersion = LocalVersion
			case rep.NewVersion != "":
				dep.ResolvedVersion = rep.NewVersion
			}
		}
		ret[req.Path] = dep
	}
	return ret
}
