package release_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gonx/logger"
	"github.com/viant/gonx/release"
	"github.com/viant/gonx/vcs"
)

type stubRegistry struct {
	version string
	err     error
}

func (s *stubRegistry) Current(_ context.Context, _ string) (string, error) {
	return s.version, s.err
}

func TestResolver_FromTags(t *testing.T) {
	tags := vcs.NewTags("foo@2.0.0", "v1.4.0", "bar@0.3.1")
	tests := []struct {
		description  string
		relationship release.Relationship
		project      string
		tags         vcs.TagSource
		expected     *release.ResolvedVersion
	}{
		{
			description:  "fixed",
			relationship: release.Fixed,
			project:      "foo",
			tags:         tags,
			expected:     &release.ResolvedVersion{CurrentVersion: "1.4.0", Provenance: release.FromVersionControl, Tag: "v1.4.0"},
		},
		{
			description:  "independent",
			relationship: release.Independent,
			project:      "foo",
			tags:         tags,
			expected:     &release.ResolvedVersion{CurrentVersion: "2.0.0", Provenance: release.FromVersionControl, Tag: "foo@2.0.0"},
		},
		{
			description:  "fixed workspace without tags",
			relationship: release.Fixed,
			project:      "foo",
			tags:         vcs.NewTags(),
			expected:     &release.ResolvedVersion{CurrentVersion: release.ZeroVersion, Provenance: release.FromVersionControl, Note: `no tag matching "v*"`},
		},
		{
			description:  "no tag",
			relationship: release.Independent,
			project:      "baz",
			tags:         tags,
			expected:     &release.ResolvedVersion{CurrentVersion: release.ZeroVersion, Provenance: release.FromVersionControl, Note: `no tag matching "baz@*"`},
		},
	}
	for _, tc := range tests {
		resolver := release.NewResolver(&release.Config{ProjectsRelationship: tc.relationship},
			release.WithTagSource(tc.tags), release.WithResolverLogger(logger.Discard()))
		actual := resolver.FromTags(context.Background(), tc.project)
		assert.Equal(t, tc.expected.CurrentVersion, actual.CurrentVersion, tc.description)
		assert.Equal(t, tc.expected.Provenance, actual.Provenance, tc.description)
		assert.Equal(t, tc.expected.Tag, actual.Tag, tc.description)
		if tc.expected.Note != "" {
			assert.Equal(t, tc.expected.Note, actual.Note, tc.description)
		}
	}
}

func TestResolver_FromRegistry(t *testing.T) {
	config := &release.Config{ProjectsRelationship: release.Independent}
	tags := vcs.NewTags("foo@1.1.0")
	tests := []struct {
		description string
		registry    release.Registry
		expected    string
		provenance  release.Provenance
	}{
		{description: "published version", registry: &stubRegistry{version: "v1.3.0"}, expected: "1.3.0", provenance: release.FromRegistry},
		{description: "network error", registry: &stubRegistry{err: errors.New("dial tcp: connection refused")}, expected: "1.1.0", provenance: release.FromRegistryFallback},
		{description: "empty answer", registry: &stubRegistry{}, expected: "1.1.0", provenance: release.FromRegistryFallback},
		{description: "no registry", expected: "1.1.0", provenance: release.FromRegistryFallback},
	}
	for _, tc := range tests {
		opts := []release.ResolverOption{release.WithTagSource(tags), release.WithResolverLogger(logger.Discard())}
		if tc.registry != nil {
			opts = append(opts, release.WithRegistry(tc.registry))
		}
		actual := release.NewResolver(config, opts...).FromRegistry(context.Background(), "foo", "github.com/workspace/foo")
		assert.Equal(t, tc.expected, actual.CurrentVersion, tc.description)
		assert.Equal(t, tc.provenance, actual.Provenance, tc.description)
		assert.NotEmpty(t, actual.LogText(), tc.description)
	}
}

func TestResolver_FallbackWithoutTags(t *testing.T) {
	resolver := release.NewResolver(&release.Config{ProjectsRelationship: release.Fixed},
		release.WithTagSource(vcs.NewTags()),
		release.WithRegistry(&stubRegistry{err: errors.New("timeout")}),
		release.WithResolverLogger(logger.Discard()))
	actual := resolver.FromRegistry(context.Background(), "foo", "github.com/workspace/foo")
	assert.Equal(t, release.ZeroVersion, actual.CurrentVersion)
	assert.Equal(t, release.FromRegistryFallback, actual.Provenance)
	assert.Contains(t, actual.Note, "timeout")
}
