// Package vcs answers "latest tag matching a glob" queries for the version resolver.
package vcs

import (
	"context"
	"errors"
)

// ErrNoTag is returned when no tag matches
var ErrNoTag = errors.New("no matching tag")

// TagSource returns the most recent tag reachable from the current position that matches the glob
type TagSource interface {
	LatestTag(ctx context.Context, glob string) (string, error)
}
