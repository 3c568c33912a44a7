package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/stepfs/pkg/stepfs"
	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	var (
		withSandbox bool
		run         bool
	)

	cmd := &cobra.Command{
		Use:   "serve [plan-file]",
		Short: "Serve the file tree over HTTP",
		Long: `Start an HTTP server that accepts build steps and serves the file tree,
its mount descriptor, flattened files and preview. An optional plan file
("-" for stdin) is replayed before the server starts. With --sandbox every
published tree is written to the sandbox directory; --run also starts the
dev server there once the first tree has been written.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: bindSandboxDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []stepfs.Option{stepfs.WithLogger(logger)}
			var devRun func(context.Context) error
			mounted := make(chan struct{})
			if withSandbox || run {
				local, dir, err := newLocalSandbox()
				if err != nil {
					return err
				}
				opts = append(opts, stepfs.WithSandbox(local))
				if run {
					devRun = func(ctx context.Context) error {
						select {
						case <-mounted:
						case <-ctx.Done():
							return nil
						}
						return runDevServer(ctx, local.DevServer)
					}
				}
				logger.Info().Str("dir", dir).Msg("sandbox enabled")
			}

			ws := stepfs.NewWorkspace(opts...)
			ws.Events().Subscribe(core.EventSandboxMounted, signalOnce(mounted))
			if len(args) == 1 {
				plan, err := readPlan(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				if _, err := ws.Apply(ctx, plan.Steps...); err != nil {
					return err
				}
			}

			addr := config.GetString(serveAddrKey)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(ws, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			group.Go(func() error {
				<-groupCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})
			if devRun != nil {
				group.Go(func() error { return devRun(groupCtx) })
			}
			return group.Wait()
		},
	}

	cmd.Flags().String("addr", defaultServeAddr, "Address to listen on")
	bindFlagToConfig(cmd.Flags().Lookup("addr"), serveAddrKey)
	cmd.Flags().String("dir", defaultSandboxDir, "Sandbox directory")
	cmd.Flags().BoolVar(&withSandbox, "sandbox", false, "Write every published tree to the sandbox directory")
	cmd.Flags().BoolVar(&run, "run", false, "Run the dev server in the sandbox directory (implies --sandbox)")

	return cmd
}

// signalOnce returns an event handler that closes ch on the first event.
func signalOnce(ch chan struct{}) core.EventHandler {
	var once sync.Once
	return core.EventHandlerFunc(func(context.Context, core.Event) error {
		once.Do(func() { close(ch) })
		return nil
	})
}
