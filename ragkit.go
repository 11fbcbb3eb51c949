package ragkit

import (
	"context"
	"log/slog"

	"github.com/henribesnard/ragkit/internal/commands"
	"github.com/henribesnard/ragkit/internal/config"
	"github.com/henribesnard/ragkit/internal/history"
	"github.com/henribesnard/ragkit/internal/launcher"
	"github.com/henribesnard/ragkit/internal/proxy"
	"github.com/henribesnard/ragkit/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type Mode = config.Mode

type State = supervisor.State

type HealthStatus = commands.HealthStatus

type HistorySink = history.Sink

type LaunchStrategy = launcher.Strategy

// App bundles a supervised backend with the command surface the UI
// talks to. It is the embedding point for a desktop shell: construct
// it at launch, Start it, route UI commands through Commands, Stop it
// on window close.
type App struct {
	Supervisor *supervisor.Supervisor
	Commands   *commands.Surface
}

// Options carries the cross-cutting collaborators an App needs beyond
// its file configuration.
type Options struct {
	Logger  *slog.Logger
	History history.Sink
}

// New wires an App from configuration: the launch strategy picked by
// cfg.Mode, the supervisor around it, and the command surface proxying
// to whatever port the supervisor ends up on.
func New(cfg Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var l launcher.Launcher
	switch cfg.Mode {
	case config.ModeProduction:
		l = &launcher.Sidecar{
			ResourceDir: cfg.Sidecar.ResourceDir,
			Entrypoint:  cfg.Sidecar.Entrypoint,
			Logger:      logger,
		}
	default:
		l = &launcher.Development{
			Interpreter: cfg.Development.Interpreter,
			Entrypoint:  cfg.Development.Entrypoint,
			Logger:      logger,
		}
	}

	sup := supervisor.New(supervisor.Options{
		Launcher:       l,
		PortRangeStart: cfg.Ports.Start,
		PortRangeEnd:   cfg.Ports.End,
		Probe: supervisor.ProbeConfig{
			Timeout:        cfg.Readiness.Timeout,
			Interval:       cfg.Readiness.Interval,
			RequestTimeout: cfg.Readiness.RequestTimeout,
		},
		ShutdownWait:  cfg.Shutdown.RequestTimeout,
		ShutdownGrace: cfg.Shutdown.Grace,
		Logger:        logger,
		History:       opts.History,
	})

	client := proxy.New(proxy.Config{Endpoint: sup, Logger: logger})
	return &App{
		Supervisor: sup,
		Commands:   commands.New(client, logger),
	}, nil
}

// Start launches the backend and blocks until it is ready.
func (a *App) Start(ctx context.Context) error { return a.Supervisor.Start(ctx) }

// Stop shuts the backend down; safe to call more than once.
func (a *App) Stop(ctx context.Context) { a.Supervisor.Stop(ctx) }
