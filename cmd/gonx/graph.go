package main

import (
	"github.com/spf13/cobra"
	"github.com/viant/gonx/graph"
	"github.com/viant/gonx/imports"
	"github.com/viant/gonx/workspace"
)

func newGraphCmd() *cobra.Command {
	var useSitter, useTooling, skipTests bool
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print project dependency edges discovered from imports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			snapshot := s.snapshot
			if useTooling {
				modules, err := workspace.ListModules(ctx, s.tree.Root())
				if err != nil {
					return err
				}
				snapshot = workspace.NewSnapshot(snapshot.Projects, workspace.NewModuleTable(modules...))
			}
			var opts []graph.Option
			if useSitter {
				opts = append(opts, graph.WithExtractor(imports.Sitter{}))
			}
			if skipTests {
				opts = append(opts, graph.WithMatcher(graph.GolangSources))
			}
			edges, err := graph.NewBuilder(opts...).Build(ctx, s.tree, snapshot, nil)
			if err != nil {
				return err
			}
			if edges == nil {
				edges = []*graph.Edge{}
			}
			return printJSON(cmd, edges)
		},
	}
	cmd.Flags().BoolVar(&useSitter, "sitter", false, "extract imports with tree-sitter")
	cmd.Flags().BoolVar(&useTooling, "tooling", false, "list modules with the Go tooling instead of reading manifests")
	cmd.Flags().BoolVar(&skipTests, "skip-tests", false, "ignore _test.go files")
	return cmd
}
