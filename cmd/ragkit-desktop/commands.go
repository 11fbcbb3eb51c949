package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/henribesnard/ragkit"
	"github.com/henribesnard/ragkit/internal/config"
	"github.com/henribesnard/ragkit/internal/devstub"
	"github.com/henribesnard/ragkit/internal/history/factory"
	"github.com/henribesnard/ragkit/internal/logger"
	"github.com/henribesnard/ragkit/internal/metrics"
)

// createRunCommand builds the command that supervises the backend for
// the lifetime of the process: start, wait for a signal, stop.
func createRunCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Launch and supervise the backend until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(globalFlags.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log, closer, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("open log: %w", err)
			}
			defer func() { _ = closer.Close() }()

			_ = metrics.Register(prometheus.DefaultRegisterer)

			var sink ragkit.HistorySink
			if cfg.History.Enabled {
				sink, err = factory.NewSinkFromDSN(cfg.History.DSN)
				if err != nil {
					return fmt.Errorf("history sink: %w", err)
				}
				if c, ok := sink.(io.Closer); ok {
					defer func() { _ = c.Close() }()
				}
			}

			app, err := ragkit.New(cfg, ragkit.Options{Logger: log, History: sink})
			if err != nil {
				return err
			}

			if err := app.Start(cmd.Context()); err != nil {
				// Startup failure is fatal: clean up whatever is half
				// running before reporting it.
				app.Stop(context.Background())
				return err
			}

			health := app.Commands.HealthCheck(cmd.Context())
			log.Info("backend health", "ok", health.OK, "version", health.Version)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			app.Stop(ctx)
			return nil
		},
	}
}

// createStubCommand builds the command that serves the in-memory stub
// backend, for developing the shell without a Python runtime.
func createStubCommand(flags *StubFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve an in-memory stub backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			stub := devstub.New(devstub.Options{FailHealthProbes: flags.FailHealthProbes})
			srv := &http.Server{
				Addr:              fmt.Sprintf("127.0.0.1:%d", flags.Port),
				Handler:           stub.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sig:
			case <-stub.ShutdownRequested():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().IntVar(&flags.Port, "port", 8100, "port to listen on")
	cmd.Flags().IntVar(&flags.FailHealthProbes, "fail-health", 0, "answer 503 to the first N health probes")
	return cmd
}
