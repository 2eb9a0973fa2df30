package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/navsim/internal/config"
	"github.com/udisondev/navsim/internal/db"
	"github.com/udisondev/navsim/internal/scenario"
	"github.com/udisondev/navsim/internal/sim"
	"github.com/udisondev/navsim/internal/world"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.PathFromEnv()
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Per-tick logs are gated separately, they are too hot for the handler level alone
	world.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("navsim starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"backend", cfg.Host.Backend,
		"routes", cfg.Routes.Source)

	var routes scenario.RouteLoader
	if cfg.Routes.Source == config.RoutesDatabase {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if cfg.Routes.Migrate {
			if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			slog.Info("database migrations applied")
		}
		routes = database.Routes()
	}

	sc, err := sim.LoadScenario(ctx, cfg.Scenario.Path, routes)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	s, err := sim.New(cfg, sc, sim.WithRouteLoader(routes))
	if err != nil {
		return err
	}
	if err := s.SpawnAll(); err != nil {
		return fmt.Errorf("spawning agents: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting tick manager", "agents", len(s.AgentNames()))
		if err := s.Run(gctx); err != nil {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	if cfg.Scenario.Watch {
		watcher, err := scenario.NewWatcher(cfg.Scenario.Path, cfg.Scenario.Debounce)
		if err != nil {
			return fmt.Errorf("watching scenario: %w", err)
		}
		g.Go(func() error {
			slog.Info("watching scenario", "path", cfg.Scenario.Path)
			return watcher.Run(gctx, func(path string) {
				slog.Info("scenario changed, reloading", "path", path)
				s.Reload(gctx, path)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
