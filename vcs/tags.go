package vcs

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"
)

// Tags is an in-memory tag source for hosts that already hold the reachable tags, most recent first
type Tags struct {
	tags []string
}

// NewTags creates a tag source; tags are ordered most recent first
func NewTags(tags ...string) *Tags {
	return &Tags{tags: tags}
}

// LatestTag returns the first tag matching the glob
func (t *Tags) LatestTag(_ context.Context, pattern string) (string, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid tag glob %q: %w", pattern, err)
	}
	for _, tag := range t.tags {
		if matcher.Match(tag) {
			return tag, nil
		}
	}
	return "", ErrNoTag
}
