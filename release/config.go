// Package release resolves and writes project versions for Go workspaces.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Relationship is the workspace release mode
type Relationship string

const (
	// Fixed projects share one version stream
	Fixed Relationship = "fixed"
	// Independent projects are versioned individually
	Independent Relationship = "independent"
)

const (
	// DefaultFixedPattern is the tag pattern of fixed workspaces
	DefaultFixedPattern = "v{version}"
	// DefaultIndependentPattern is the tag pattern of independent workspaces
	DefaultIndependentPattern = "{projectName}@{version}"
	// DefaultConfigFile is where the release configuration is looked up
	DefaultConfigFile = "nx.json"
)

// ErrConfigNotFound is returned when the release configuration file does not exist
var ErrConfigNotFound = errors.New("release configuration not found")

// StringList decodes either a single string or a list of strings
type StringList []string

// UnmarshalJSON accepts a string or an array of strings
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = values
	return nil
}

// UnmarshalYAML accepts scalar and sequence nodes
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*s = values
		return nil
	}
	return fmt.Errorf("expected string or list of strings at line %d", node.Line)
}

// Group is a release group with an optional tag pattern override
type Group struct {
	Projects          StringList `json:"projects" yaml:"projects"`
	ReleaseTagPattern string     `json:"releaseTagPattern,omitempty" yaml:"releaseTagPattern,omitempty"`
}

// Config is the release configuration
type Config struct {
	ProjectsRelationship Relationship      `json:"projectsRelationship,omitempty" yaml:"projectsRelationship,omitempty"`
	ReleaseTagPattern    string            `json:"releaseTagPattern,omitempty" yaml:"releaseTagPattern,omitempty"`
	Groups               map[string]*Group `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Source is the read side of the workspace tree
type Source interface {
	Read(ctx context.Context, relPath string) ([]byte, error)
	Exists(ctx context.Context, relPath string) bool
}

// LoadConfig reads the release configuration; a missing file is an error since no relationship can be assumed
func LoadConfig(ctx context.Context, source Source, location string) (*Config, error) {
	if location == "" {
		location = DefaultConfigFile
	}
	if !source.Exists(ctx, location) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, location)
	}
	data, err := source.Read(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read release configuration: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a JSON document, or YAML when the content is not JSON.
// A top level "release" object is unwrapped when present.
func ParseConfig(data []byte) (*Config, error) {
	unmarshal := yaml.Unmarshal
	if json.Valid(data) {
		unmarshal = json.Unmarshal
	}
	wrapper := struct {
		Release *Config `json:"release" yaml:"release"`
	}{}
	if err := unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse release configuration: %w", err)
	}
	config := wrapper.Release
	if config == nil {
		config = &Config{}
		if err := unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse release configuration: %w", err)
		}
	}
	if config.ProjectsRelationship == "" {
		config.ProjectsRelationship = Fixed
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the relationship value
func (c *Config) Validate() error {
	switch c.ProjectsRelationship {
	case Fixed, Independent:
		return nil
	}
	return fmt.Errorf("invalid projectsRelationship: %q (expected %q or %q)", c.ProjectsRelationship, Fixed, Independent)
}

// GroupOf returns the group containing the project; group entries may be names or globs
func (c *Config) GroupOf(project string) (string, *Group) {
	for name, group := range c.Groups {
		for _, candidate := range group.Projects {
			if candidate == project {
				return name, group
			}
			if matcher, err := glob.Compile(candidate); err == nil && matcher.Match(project) {
				return name, group
			}
		}
	}
	return "", nil
}

// TagPattern returns the effective tag pattern: group override, workspace pattern, then the relationship default
func (c *Config) TagPattern(project string) string {
	if _, group := c.GroupOf(project); group != nil && group.ReleaseTagPattern != "" {
		return group.ReleaseTagPattern
	}
	if c.ReleaseTagPattern != "" {
		return c.ReleaseTagPattern
	}
	if c.ProjectsRelationship == Independent {
		return DefaultIndependentPattern
	}
	return DefaultFixedPattern
}
