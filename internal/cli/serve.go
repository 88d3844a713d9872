package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr            string
	ShutdownTimeout time.Duration

	// IDGenerator allows overriding the request ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator server.IDGenerator

	// ready is called with the bound address once the server listens.
	ready func(addr string)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database over HTTP",
		Long: `Start the HTTP API for the database.

The server speaks HTTP/1.1 and cleartext HTTP/2, exposes Prometheus
metrics on /metrics and stops gracefully on SIGINT or SIGTERM.

Example:
  sumdb serve --db ./sumdb.db --addr :8080
  SUMDB_BACKEND=bolt sumdb serve --db ./sumdb.bolt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", getEnvOrDefault("SUMDB_ADDR", ":8080"), "listen address (env SUMDB_ADDR)")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("opening database", "path", opts.Database, "backend", opts.Backend)
	eng, closeFn, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeFn()

	idGen := opts.IDGenerator
	if idGen == nil {
		idGen = server.UUIDv7Generator{}
	}
	srv := server.New(eng, server.WithLogger(logger), server.WithIDGenerator(idGen))

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	ctx, cancel := context.WithCancel(cmdContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	if err := srv.Start(opts.Addr); err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())
	if opts.ready != nil {
		opts.ready(srv.Addr())
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
