package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git runs tag queries with the git command line in Dir
type Git struct {
	Dir string
}

// NewGit creates a git tag source for the repository containing dir
func NewGit(dir string) *Git {
	if root := Root(dir); root != "" {
		dir = root
	}
	return &Git{Dir: dir}
}

// LatestTag runs git describe restricted to tags matching the glob
func (g *Git) LatestTag(ctx context.Context, glob string) (string, error) {
	out, err := g.output(ctx, "describe", "--tags", "--abbrev=0", "--match", glob)
	if err != nil {
		return "", err
	}
	tag := strings.TrimSpace(out)
	if tag == "" {
		return "", ErrNoTag
	}
	return tag, nil
}

// Head returns the full SHA of HEAD
func (g *Git) Head(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// IsInstalled returns true if git is available on the system PATH
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Root finds the root of the git repository containing the given directory, or empty string
func Root(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
