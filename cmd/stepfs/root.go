package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arthur-debert/stepfs/pkg/stepfs"
	"github.com/arthur-debert/stepfs/pkg/stepfs/steps"
)

// config holds the merged flag, environment and file configuration.
var config = viper.New()

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepfs",
		Short: "Replay build steps into a file tree and preview it",
		Long: `stepfs turns a stream of build steps into a hierarchical file tree.
It can export the tree as a mount descriptor, list its files, assemble a
static HTML preview, materialise it into a directory and run a dev server
there, or serve the tree over HTTP while new steps arrive.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(config, cfgFile); err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			l, err := configureLogger(config, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			logger = l
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+configFileName+")")
	cmd.PersistentFlags().String("log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("log-level"), logLevelKey)
	cmd.PersistentFlags().String("log-file", "", "write logs to a rotated file instead of stderr")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("log-file"), logFilenameKey)

	cmd.AddCommand(versionCmd)
	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newFilesCommand())
	cmd.AddCommand(newPreviewCommand())
	cmd.AddCommand(newMaterializeCommand())
	cmd.AddCommand(newServeCommand())

	return cmd
}

// bindFlagToConfig wires a cobra flag to a viper key so config and env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(config.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readPlan loads a step plan from a file, or from stdin when path is "-".
// Stdin is decoded as JSON first and YAML second.
func readPlan(path string, stdin io.Reader) (*steps.Plan, error) {
	if path != "-" {
		return steps.LoadPlan(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan from stdin: %w", err)
	}
	plan, err := steps.UnmarshalPlan(data)
	if err == nil {
		return plan, nil
	}
	if yamlPlan, yamlErr := steps.UnmarshalPlanYAML(data); yamlErr == nil {
		return yamlPlan, nil
	}
	return nil, err
}

// buildWorkspace replays a plan into a fresh workspace.
func buildWorkspace(ctx context.Context, cmd *cobra.Command, path string, opts ...stepfs.Option) (*stepfs.Workspace, stepfs.Result, error) {
	plan, err := readPlan(path, cmd.InOrStdin())
	if err != nil {
		return nil, stepfs.Result{}, err
	}

	opts = append([]stepfs.Option{stepfs.WithLogger(logger)}, opts...)
	ws := stepfs.NewWorkspace(opts...)
	result, err := ws.Apply(ctx, plan.Steps...)
	logger.Debug().
		Int("steps", len(plan.Steps)).
		Int("applied", len(result.Applied)).
		Msg("replayed plan")
	return ws, result, err
}
