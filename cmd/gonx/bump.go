package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/gonx/graph"
	"github.com/viant/gonx/logger"
	"github.com/viant/gonx/release"
	"github.com/viant/gonx/vcs"
)

type bumpOutput struct {
	Project string   `json:"project"`
	Version string   `json:"version"`
	Tag     string   `json:"tag"`
	Commit  string   `json:"commit,omitempty"`
	Changed []string `json:"changed"`
}

func newBumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bump <project> <version> [dependency=version...]",
		Short: "Write a project version and update its workspace dependency requirements",
		Long:  "Dependencies are named by project or by module path.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			updates := map[string]string{}
			for _, arg := range args[2:] {
				name, version, ok := strings.Cut(arg, "=")
				if !ok || name == "" || version == "" {
					return fmt.Errorf("invalid dependency update %q, expected project=version", arg)
				}
				updates[name] = version
			}
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			resolver, err := s.resolver(ctx)
			if err != nil {
				return err
			}
			edges, err := graph.NewBuilder().Build(ctx, s.tree, s.snapshot, nil)
			if err != nil {
				return err
			}
			byProject := make(map[string]string, len(updates))
			for name, version := range updates {
				if project, ok := s.snapshot.ProjectOfModule(name); ok {
					name = project.Name
				}
				byProject[name] = version
			}
			updates = byProject
			actions, err := release.NewGoActions(s.tree, s.snapshot, resolver, args[0], release.WithEdges(edges))
			if err != nil {
				return err
			}
			output := &bumpOutput{Project: args[0], Version: args[1]}
			changed, err := actions.WriteVersion(ctx, args[1])
			if err != nil {
				return err
			}
			output.Changed = append(output.Changed, changed...)
			if changed, err = actions.UpdateDependencies(ctx, updates); err != nil {
				return err
			}
			output.Changed = append(output.Changed, changed...)
			output.Tag = actions.PendingTag()
			if commit, err := vcs.NewGit(s.tree.Root()).Head(ctx); err == nil {
				output.Commit = commit
			} else {
				logger.Debug("failed to read HEAD", "error", err)
			}
			return printJSON(cmd, output)
		},
	}
}
