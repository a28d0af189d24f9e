package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/modkit/internal/config"
	"github.com/conneroisu/modkit/internal/events"
	"github.com/conneroisu/modkit/internal/interfaces"
	"github.com/conneroisu/modkit/internal/logging"
	"github.com/conneroisu/modkit/internal/monitor"
	"github.com/conneroisu/modkit/internal/registry"
	"github.com/conneroisu/modkit/internal/relationship"
	"github.com/conneroisu/modkit/internal/watcher"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"m"},
	Short:   "Stream substrate events over WebSocket",
	Long: `Run the event monitor server. Connected WebSocket clients receive
every substrate event (navigation transitions, policy violations, unit
changes) as JSON.

The configuration file is watched; edits are picked up without a restart
and the relationship cache is invalidated.

Endpoints:
  ws://<host>:<port>/ws        Event stream
  http://<host>:<port>/healthz Health check

Examples:
  modkit monitor                       # Use .modkit.yml settings
  modkit monitor --port 9001           # Override the listen port
  modkit monitor --no-watch            # Disable config hot reload`,
	RunE: runMonitor,
}

var (
	monitorPort    int
	monitorNoWatch bool
)

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().IntVarP(&monitorPort, "port", "p", 0, "Override the configured monitor port")
	monitorCmd.Flags().BoolVar(&monitorNoWatch, "no-watch", false, "Disable configuration hot reload")
}

func runMonitor(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if monitorPort != 0 {
		cfg.Monitor.Port = monitorPort
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    "text",
		Output:    os.Stderr,
		Component: "monitor",
	})

	bus := events.NewBus()
	defer bus.Close()

	reg := config.BuildRegistry(cfg)
	resolver := relationship.NewResolver(reg)

	server := monitor.NewServer(cfg.Monitor.Host, cfg.Monitor.Port, bus,
		monitor.WithAllowedOrigins(cfg.Monitor.AllowedOrigins),
		monitor.WithLogger(logger),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !monitorNoWatch {
		if configPath := viper.ConfigFileUsed(); configPath != "" {
			cw, err := watcher.NewConfigWatcher(configPath, 300*time.Millisecond)
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", configPath, err)
			}
			defer func() { _ = cw.Stop() }()

			cw.AddHandler(func(path string) {
				reloadConfig(ctx, path, reg, resolver, bus, logger)
			})
			cw.Start(ctx)
			logger.Info(ctx, "watching configuration", "path", configPath)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// reloadConfig re-reads the configuration file, swaps the registry
// contents, and drops the relationship cache so new edges take effect.
func reloadConfig(
	ctx context.Context,
	path string,
	reg *registry.UnitRegistry,
	resolver *relationship.Resolver,
	bus *events.Bus,
	logger logging.Logger,
) {
	if err := viper.ReadInConfig(); err != nil {
		logger.Warn(ctx, err, "config reload failed", "path", path)
		return
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Warn(ctx, err, "config reload rejected", "path", path)
		return
	}

	for name := range reg.GetAll() {
		reg.Remove(name)
	}
	for _, unit := range cfg.Units {
		active := true
		if unit.Active != nil {
			active = *unit.Active
		}
		reg.Register(&registry.UnitInfo{
			Name:         unit.Name,
			Dependencies: unit.Dependencies,
			Active:       active,
		})
	}
	if cfg.Navigation.DefaultUnit != "" {
		reg.SetCurrent(cfg.Navigation.DefaultUnit)
	}
	resolver.Invalidate()

	bus.Publish(interfaces.Event{
		Type:   interfaces.EventTypeUnitChange,
		Reason: "configuration reloaded",
	})
	logger.Info(ctx, "configuration reloaded", "path", path, "units", len(cfg.Units))
}
