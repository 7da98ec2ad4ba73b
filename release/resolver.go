package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/viant/gonx/logger"
	"github.com/viant/gonx/metrics"
	"github.com/viant/gonx/vcs"
)

// ZeroVersion is the version of a never released project
const ZeroVersion = "0.0.0"

// Provenance tells where a resolved version comes from
type Provenance string

const (
	// FromVersionControl versions come from git tags
	FromVersionControl Provenance = "version-control"
	// FromRegistry versions come from the module registry
	FromRegistry Provenance = "registry"
	// FromRegistryFallback versions come from git tags after a failed registry lookup
	FromRegistryFallback Provenance = "version-control (registry fallback)"
)

// ResolvedVersion is a computed current version
type ResolvedVersion struct {
	CurrentVersion string     `json:"currentVersion" yaml:"currentVersion"`
	Provenance     Provenance `json:"provenance" yaml:"provenance"`
	Tag            string     `json:"tag,omitempty" yaml:"tag,omitempty"` // matching tag, empty when none
	Note           string     `json:"note,omitempty" yaml:"note,omitempty"`
}

// LogText returns a diagnostic description
func (r *ResolvedVersion) LogText() string {
	if r.Note != "" {
		return fmt.Sprintf("resolved %s from %s (%s)", r.CurrentVersion, r.Provenance, r.Note)
	}
	return fmt.Sprintf("resolved %s from %s", r.CurrentVersion, r.Provenance)
}

// Registry returns the currently published version of a module
type Registry interface {
	Current(ctx context.Context, modulePath string) (string, error)
}

// Resolver computes project versions; it keeps no state between requests
type Resolver struct {
	config   *Config
	tags     vcs.TagSource
	registry Registry
	logger   *log.Logger
}

// ResolverOption customises the resolver
type ResolverOption func(r *Resolver)

// WithTagSource sets the tag source
func WithTagSource(tags vcs.TagSource) ResolverOption {
	return func(r *Resolver) {
		r.tags = tags
	}
}

// WithRegistry sets the registry
func WithRegistry(registry Registry) ResolverOption {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithResolverLogger sets the logger
func WithResolverLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver, git in the working directory is the default tag source
func NewResolver(config *Config, opts ...ResolverOption) *Resolver {
	ret := &Resolver{config: config}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tags == nil {
		ret.tags = vcs.NewGit(".")
	}
	if ret.logger == nil {
		ret.logger = logger.Logger
	}
	return ret
}

// Config returns the release configuration
func (r *Resolver) Config() *Config {
	return r.config
}

// FromTags resolves the version from the latest matching tag; no tag or a failing query gives ZeroVersion
func (r *Resolver) FromTags(ctx context.Context, project string) *ResolvedVersion {
	pattern := r.config.TagPattern(project)
	glob := MatchGlob(pattern, project)
	ret := &ResolvedVersion{CurrentVersion: ZeroVersion, Provenance: FromVersionControl}
	tag, err := r.tags.LatestTag(ctx, glob)
	switch {
	case err != nil:
		ret.Note = fmt.Sprintf("no tag matching %q", glob)
		r.logger.Debug("tag lookup failed", "project", project, "glob", glob, "error", err)
	case tag == "":
		ret.Note = fmt.Sprintf("no tag matching %q", glob)
	default:
		ret.Tag = tag
		ret.CurrentVersion = ExtractVersion(pattern, tag)
		r.logger.Debug("resolved tag", "project", project, "tag", tag, "version", ret.CurrentVersion)
	}
	metrics.VersionResolutions.WithLabelValues(string(ret.Provenance)).Inc()
	return ret
}

// FromRegistry resolves the published version of the module; any registry failure falls back to tags
func (r *Resolver) FromRegistry(ctx context.Context, project, modulePath string) *ResolvedVersion {
	if r.registry == nil || modulePath == "" {
		return r.fallback(ctx, project, "registry not available")
	}
	version, err := r.registry.Current(ctx, modulePath)
	if err != nil {
		r.logger.Warn("registry lookup failed, using tags", "project", project, "module", modulePath, "error", err)
		return r.fallback(ctx, project, err.Error())
	}
	if version == "" {
		return r.fallback(ctx, project, "registry returned no version")
	}
	metrics.VersionResolutions.WithLabelValues(string(FromRegistry)).Inc()
	return &ResolvedVersion{
		CurrentVersion: strings.TrimPrefix(version, "v"),
		Provenance:     FromRegistry,
		Note:           fmt.Sprintf("retrieved %s for %s", version, modulePath),
	}
}

func (r *Resolver) fallback(ctx context.Context, project, reason string) *ResolvedVersion {
	ret := r.FromTags(ctx, project)
	ret.Provenance = FromRegistryFallback
	if ret.Note != "" {
		reason += "; " + ret.Note
	}
	ret.Note = reason
	return ret
}
