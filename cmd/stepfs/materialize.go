package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stepfs/pkg/stepfs"
	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/filesystem"
	"github.com/arthur-debert/stepfs/pkg/stepfs/sandbox"
)

func newMaterializeCommand() *cobra.Command {
	var run bool

	cmd := &cobra.Command{
		Use:   "materialize [plan-file]",
		Short: "Write the tree of a plan to a directory",
		Long: `Replay a plan file ("-" for stdin) and write the resulting tree into the
sandbox directory. Existing files are overwritten, nothing is removed. With
--run, dependencies are installed and the dev server is started there.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: bindSandboxDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			local, dir, err := newLocalSandbox()
			if err != nil {
				return err
			}

			ws, result, err := buildWorkspace(ctx, cmd, args[0], stepfs.WithSandbox(local))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Materialized %d files (%d steps) into %s\n",
				len(ws.FlattenedFiles()), len(result.Applied), dir)

			if !run {
				return nil
			}
			local.OnServerReady(func(r core.ServerReady) {
				fmt.Fprintf(cmd.OutOrStdout(), "Server ready: %s\n", r.URL)
			})
			return runDevServer(ctx, local.DevServer)
		},
	}

	cmd.Flags().String("dir", defaultSandboxDir, "Sandbox directory")
	cmd.Flags().BoolVar(&run, "run", false, "Install dependencies and run the dev server")

	return cmd
}

// bindSandboxDir binds the --dir flag of the running command. Several
// commands define --dir, so the binding happens once the command is chosen.
func bindSandboxDir(cmd *cobra.Command, _ []string) error {
	return config.BindPFlag(sandboxDirKey, cmd.Flags().Lookup("dir"))
}

// newLocalSandbox builds the on-disk sandbox configured by sandbox.dir,
// sandbox.install and sandbox.dev.
func newLocalSandbox() (*sandbox.Local, string, error) {
	dir, err := filepath.Abs(config.GetString(sandboxDirKey))
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve sandbox directory: %w", err)
	}

	adapter := stepfs.NewLoggerAdapter(&logger)
	dirSandbox := sandbox.NewDirSandbox(filesystem.NewOSFileSystem(dir), adapter)
	devServer := sandbox.NewDevServer(dir, adapter,
		sandbox.WithInstallCommand(sandbox.ParseCommand(config.GetString(sandboxInstallKey))),
		sandbox.WithDevCommand(sandbox.ParseCommand(config.GetString(sandboxDevKey))),
	)
	return sandbox.NewLocal(dirSandbox, devServer), dir, nil
}

// runDevServer runs the dev server until it exits or ctx is cancelled.
// Cancellation is a clean shutdown.
func runDevServer(ctx context.Context, dev *sandbox.DevServer) error {
	err := dev.Run(ctx)
	if ctx.Err() != nil {
		logger.Info().Msg("development server stopped")
		return nil
	}
	return err
}
