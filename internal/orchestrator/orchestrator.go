// Package orchestrator wires the daemon supervisor, settings, metrics and
// front-ends together and owns the process lifetime.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/randomizedcoder/go-fluxgui/internal/config"
	"github.com/randomizedcoder/go-fluxgui/internal/controller"
	"github.com/randomizedcoder/go-fluxgui/internal/logging"
	"github.com/randomizedcoder/go-fluxgui/internal/metrics"
	"github.com/randomizedcoder/go-fluxgui/internal/preflight"
	"github.com/randomizedcoder/go-fluxgui/internal/process"
	"github.com/randomizedcoder/go-fluxgui/internal/settings"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
	"github.com/randomizedcoder/go-fluxgui/internal/tray"
	"github.com/randomizedcoder/go-fluxgui/internal/tui"
)

// ShutdownTimeout bounds the final Stop, including waiting out a preview.
const ShutdownTimeout = 15 * time.Second

// Version is reported in the info metric. Set by main.
var Version = "dev"

// Orchestrator coordinates all components for one session.
type Orchestrator struct {
	config *config.Config
	logger *slog.Logger
	out    io.Writer

	store         *settings.Store
	driver        process.Driver
	launcher      *process.Launcher
	output        *logging.OutputHandler
	supervisor    *supervisor.Supervisor
	controller    *controller.Controller
	registry      *prometheus.Registry
	metrics       *metrics.Collector
	metricsServer *metrics.Server

	startTime time.Time
}

// New creates an Orchestrator. The settings file is opened and merged with
// cfg; flags given on the command line win.
func New(cfg *config.Config, logger *slog.Logger) (*Orchestrator, error) {
	path := cfg.SettingsPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	store, err := settings.Open(path)
	if err != nil {
		return nil, err
	}
	current := cfg.Overlay(store.Get())
	store.Replace(current)

	driver, err := process.NewDriver(current.Daemon, cfg.DaemonPath)
	if err != nil {
		return nil, &supervisor.ConfigurationError{Err: err}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	o := &Orchestrator{
		config:   cfg,
		logger:   logger,
		out:      os.Stdout,
		store:    store,
		driver:   driver,
		output:   logging.NewOutputHandler(logger, cfg.Verbose),
		registry: registry,
		metrics: metrics.NewCollectorWithRegistry(metrics.CollectorConfig{
			Daemon:  driver.Name(),
			Version: Version,
		}, registry),
	}

	o.launcher = process.NewLauncher(process.LauncherConfig{
		Logger:      logger,
		UsePTY:      cfg.UsePTY,
		KillTimeout: cfg.KillTimeout,
		Output:      o.output.HandleReader,
		OnExit:      o.onExit,
	})

	o.supervisor = supervisor.New(supervisor.Config{
		Driver:      driver,
		Launcher:    o.launcher,
		Logger:      logger,
		Location:    current.Location(),
		Color:       current.Color,
		PauseColor:  current.PauseColor,
		SettleDelay: cfg.SettleDelay,
		PreviewHold: cfg.PreviewHold,
		Callbacks: supervisor.Callbacks{
			OnStateChange:  o.onStateChange,
			OnSpawn:        o.onSpawn,
			OnStraysKilled: o.metrics.RecordStraysKilled,
			OnColorChange:  o.metrics.RecordColor,
			OnPreview:      func(string) { o.metrics.RecordPreview() },
			OnShutdown:     o.metrics.RecordShutdown,
		},
	})

	autostart, err := settings.DefaultAutostart()
	if err != nil {
		logger.Warn("autostart_unavailable", "error", err)
		autostart = nil
	}

	o.controller = controller.New(controller.Config{
		Supervisor: o.supervisor,
		Store:      store,
		Autostart:  autostart,
		Logger:     logger,
	})

	if cfg.MetricsAddr != "" {
		o.metricsServer = metrics.NewServer(metrics.ServerConfig{
			Addr:     cfg.MetricsAddr,
			Logger:   logger,
			Gatherer: registry,
			Ready:    o.ready,
		})
	}

	return o, nil
}

// SetOutput redirects preflight results and the exit summary.
func (o *Orchestrator) SetOutput(w io.Writer) {
	o.out = w
}

// Run starts the daemon, serves the configured front-end and leaves the
// display neutral on return. It blocks until the front-end exits, ctx is
// cancelled or a signal arrives.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.startTime = time.Now()

	if !o.config.SkipPreflight {
		result := preflight.RunAll(o.driver.BinaryPath())
		preflight.PrintResults(o.out, result)
		if !result.Passed {
			if failed := result.Failed(); failed != nil && failed.Name == "daemon" {
				return &supervisor.DaemonNotFoundError{
					Binary: o.driver.BinaryPath(),
					Err:    errors.New(failed.Message),
				}
			}
			return fmt.Errorf("preflight checks failed (use --skip-preflight to override)")
		}
	}

	if o.metricsServer != nil {
		if err := o.metricsServer.Start(); err != nil {
			return err
		}
		defer o.shutdownMetrics()
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			o.logger.Info("received_signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := o.controller.Start(ctx); err != nil {
		return err
	}
	o.logger.Info("daemon_started",
		"daemon", o.driver.Name(),
		"color", o.supervisor.Color(),
		"command", process.CommandString(o.driver, o.supervisor.Color(), o.supervisor.Location()),
	)

	if o.config.WatchSettings {
		o.watchSettings(ctx)
	}

	uiErr := o.runUI(ctx, cancel)
	cancel()

	ok := o.shutdown()
	fmt.Fprint(o.out, metrics.FormatSummary(o.metrics.Summary(), o.driver.Name()))

	if uiErr != nil {
		return uiErr
	}
	if !ok {
		return fmt.Errorf("%s did not shut down; the display may not be neutral", o.driver.Name())
	}
	return nil
}

// runUI blocks in the configured front-end.
func (o *Orchestrator) runUI(ctx context.Context, cancel context.CancelFunc) error {
	switch o.config.UI {
	case "tui":
		model := tui.New(tui.Config{
			Context:     ctx,
			Controller:  o.controller,
			Lines:       o.output,
			Daemon:      o.driver.Name(),
			MetricsAddr: o.metricsAddr(),
		})
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil

	case "tray":
		tray.New(tray.Config{
			Controller: o.controller,
			Logger:     o.logger,
			Daemon:     o.driver.Name(),
			OnQuit:     cancel,
		}).Run(ctx)
		return nil

	default:
		o.logger.Info("running_headless")
		<-ctx.Done()
		return nil
	}
}

// watchSettings applies edits made to the settings file while running.
func (o *Orchestrator) watchSettings(ctx context.Context) {
	w, err := settings.NewWatcher(o.store.Path(), o.logger, settings.DefaultDebounce)
	if err != nil {
		o.logger.Warn("settings_watch_unavailable", "error", err)
		return
	}

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Warn("settings_watch_stopped", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case next := <-w.Changes():
				if err := o.controller.Apply(ctx, next); err != nil {
					o.logger.Warn("settings_reload_failed", "error", err)
				}
			}
		}
	}()
}

// shutdown stops the daemon, waiting out an operation still in flight.
// A preview in progress restores its color before the stop proceeds.
func (o *Orchestrator) shutdown() bool {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0

	var ok bool
	err := backoff.Retry(func() error {
		var err error
		ok, err = o.controller.Stop(ctx)
		switch {
		case errors.Is(err, supervisor.ErrBusy):
			return err
		case err != nil:
			return backoff.Permanent(err)
		case !ok:
			return errors.New("stop incomplete")
		}
		return nil
	}, backoff.WithContext(b, ctx))

	if err != nil {
		o.logger.Error("shutdown_failed", "error", err)
		return false
	}
	o.logger.Info("shutdown_complete")
	return true
}

func (o *Orchestrator) shutdownMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.metricsServer.Shutdown(ctx); err != nil {
		o.logger.Warn("metrics_server_shutdown_error", "error", err)
	}
}

// ready backs the readiness endpoint.
func (o *Orchestrator) ready() error {
	if state := o.supervisor.State(); !state.IsAlive() {
		return fmt.Errorf("daemon %s", state)
	}
	return nil
}

func (o *Orchestrator) metricsAddr() string {
	if o.metricsServer == nil {
		return ""
	}
	return o.metricsServer.Addr()
}

// Callback handlers

func (o *Orchestrator) onStateChange(oldState, newState supervisor.State) {
	o.metrics.SetState(newState)
}

func (o *Orchestrator) onSpawn(handle string, args []string, took time.Duration) {
	o.metrics.RecordSpawn(took)
}

func (o *Orchestrator) onExit(id string, pid int, exitCode int, uptime time.Duration) {
	o.metrics.RecordExit(exitCode, uptime)
	o.logger.Debug("daemon_exited",
		"handle", id,
		"pid", pid,
		"exit_code", exitCode,
		"uptime", uptime.String(),
	)
}

// Controller returns the controller for external access.
func (o *Orchestrator) Controller() *controller.Controller {
	return o.controller
}

// Supervisor returns the supervisor for external access.
func (o *Orchestrator) Supervisor() *supervisor.Supervisor {
	return o.supervisor
}

// Metrics returns the metrics collector for external access.
func (o *Orchestrator) Metrics() *metrics.Collector {
	return o.metrics
}

// Registry returns the registry backing /metrics.
func (o *Orchestrator) Registry() *prometheus.Registry {
	return o.registry
}
