package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/gonx/logger"
	"github.com/viant/gonx/metrics"
	"github.com/viant/gonx/registry"
	"github.com/viant/gonx/release"
	"github.com/viant/gonx/vcs"
	"github.com/viant/gonx/workspace"
)

const envPrefix = "GONX"

// rootCmd is the base command for the gonx CLI.
var rootCmd = &cobra.Command{
	Use:   "gonx",
	Short: "Go workspace dependency graph and release versions",
	Long: `gonx analyses a workspace of Go modules.

It provides commands to:
  - Print the project dependency edges found through source imports
  - Resolve a project's current version from git tags or the module proxy
  - Write a new project version and update dependent go.mod files`,
	PersistentPreRunE:  initializeGlobals,
	PersistentPostRunE: dumpMetrics,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace root (env: GONX_WORKSPACE)")
	flags.StringP("config", "c", release.DefaultConfigFile, "release configuration, workspace relative (env: GONX_CONFIG)")
	flags.String("registry", registry.DefaultURL, "module proxy URL (env: GONX_REGISTRY)")
	flags.Float64("registry-rate", 10, "max registry requests per second (env: GONX_REGISTRY_RATE)")
	flags.BoolP("verbose", "v", false, "increase output verbosity (env: GONX_VERBOSE)")
	flags.Bool("metrics", false, "print collected metrics on exit (env: GONX_METRICS)")
	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newBumpCmd())
}

func initializeGlobals(_ *cobra.Command, _ []string) error {
	logger.Setup(viper.GetBool("verbose"))
	logger.Debug("gonx started", "workspace", viper.GetString("workspace"))
	return nil
}

func dumpMetrics(cmd *cobra.Command, _ []string) error {
	if !viper.GetBool("metrics") {
		return nil
	}
	values, err := metrics.Gather()
	if err != nil {
		return err
	}
	return printJSON(cmd, values)
}

// session holds what every command needs; built once per invocation
type session struct {
	tree     workspace.Tree
	snapshot *workspace.Snapshot
}

func newSession(ctx context.Context) (*session, error) {
	root, err := filepath.Abs(viper.GetString("workspace"))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	tree := workspace.NewTree(root)
	snapshot, err := workspace.Load(ctx, tree)
	if err != nil {
		return nil, err
	}
	return &session{tree: tree, snapshot: snapshot}, nil
}

func (s *session) resolver(ctx context.Context) (*release.Resolver, error) {
	config, err := release.LoadConfig(ctx, s.tree, viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	client := registry.New(
		registry.WithURL(viper.GetString("registry")),
		registry.WithRateLimit(viper.GetFloat64("registry-rate"), 1),
	)
	return release.NewResolver(config,
		release.WithTagSource(vcs.NewGit(viper.GetString("workspace"))),
		release.WithRegistry(client),
	), nil
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
