package main

import (
	"github.com/spf13/cobra"
	"github.com/viant/gonx/logger"
	"github.com/viant/gonx/release"
)

func newVersionCmd() *cobra.Command {
	var useRegistry bool
	cmd := &cobra.Command{
		Use:   "version <project>",
		Short: "Resolve the current version of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			resolver, err := s.resolver(ctx)
			if err != nil {
				return err
			}
			actions, err := release.NewGoActions(s.tree, s.snapshot, resolver, args[0], release.WithRegistryLookup(useRegistry))
			if err != nil {
				return err
			}
			resolved, err := actions.ReadCurrentVersion(ctx)
			if err != nil {
				return err
			}
			logger.Info(resolved.LogText(), "project", args[0])
			return printJSON(cmd, resolved)
		},
	}
	cmd.Flags().BoolVar(&useRegistry, "use-registry", false, "read the published version from the module proxy")
	return cmd
}
