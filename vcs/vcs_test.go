package vcs_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gonx/vcs"
)

func TestTags_LatestTag(t *testing.T) {
	source := vcs.NewTags("bar@3.0.0", "foo@2.0.0", "v1.4.0", "foo@1.0.0", "v1.3.0")
	tests := []struct {
		description string
		glob        string
		expected    string
		err         error
	}{
		{description: "fixed pattern", glob: "v*", expected: "v1.4.0"},
		{description: "project pattern", glob: "foo@*", expected: "foo@2.0.0"},
		{description: "no match", glob: "baz@*", err: vcs.ErrNoTag},
	}
	for _, tc := range tests {
		tag, err := source.LatestTag(context.Background(), tc.glob)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.description)
			continue
		}
		require.NoError(t, err, tc.description)
		assert.Equal(t, tc.expected, tag, tc.description)
	}
}

func TestGit_LatestTag(t *testing.T) {
	if !vcs.IsInstalled() {
		t.Skip("git is not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		args = append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com",
			"-c", "commit.gpgsign=false", "-c", "tag.gpgsign=false"}, args...)
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	run("commit", "-q", "--allow-empty", "-m", "initial")
	run("tag", "v1.0.0")
	run("commit", "-q", "--allow-empty", "-m", "feature")
	run("tag", "foo@2.0.0")

	git := vcs.NewGit(dir)
	ctx := context.Background()
	tag, err := git.LatestTag(ctx, "foo@*")
	require.NoError(t, err)
	assert.Equal(t, "foo@2.0.0", tag)

	tag, err = git.LatestTag(ctx, "v*")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", tag)

	_, err = git.LatestTag(ctx, "bar@*")
	assert.Error(t, err)

	head, err := git.Head(ctx)
	require.NoError(t, err)
	assert.Len(t, head, 40)
	assert.Equal(t, dir, vcs.Root(dir))
}
