// Package orchestrator coordinates a recording session: device resolution,
// track launch, signal handling, and bounded shutdown.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jg/cluck/internal/config"
	"github.com/jg/cluck/internal/device"
	"github.com/jg/cluck/internal/logging"
	"github.com/jg/cluck/internal/metrics"
	"github.com/jg/cluck/internal/preflight"
	"github.com/jg/cluck/internal/process"
	"github.com/jg/cluck/internal/stats"
	"github.com/jg/cluck/internal/supervisor"
)

// joinMargin is added to the worst-case ladder duration when waiting for
// track goroutines, covering pipe drain and scheduling slack.
const joinMargin = 3 * time.Second

// Orchestrator coordinates all components for one recording session.
type Orchestrator struct {
	config *config.Config
	logger *slog.Logger

	builder       *process.CaptureBuilder
	manager       *Manager
	summary       *stats.RunSummary
	metrics       *metrics.Collector
	metricsServer *metrics.Server

	version   string
	startTime time.Time
}

// New creates a new Orchestrator with the given configuration.
func New(cfg *config.Config, logger *slog.Logger, version string) *Orchestrator {
	captureCfg := &process.CaptureConfig{
		BinaryPath:  cfg.FFmpegPath,
		InputFormat: device.CurrentBackend().InputFormat,
		Channels:    cfg.Channels,
		SampleRate:  cfg.SampleRate,
		Codec:       cfg.Codec,
		Bitrate:     cfg.Bitrate,
		LogLevel:    cfg.LogLevel,
	}

	orch := &Orchestrator{
		config:  cfg,
		logger:  logger,
		builder: process.NewCaptureBuilder(captureCfg),
		manager: NewManager(logger),
		summary: stats.NewRunSummary(),
		version: version,
	}

	// Metrics are opt-in for a recording CLI.
	if cfg.MetricsAddr != "" {
		orch.metrics = metrics.NewCollector(metrics.CollectorConfig{
			Version:  version,
			Tracks:   len(cfg.Tracks),
			Duration: cfg.Duration,
		})
		orch.metricsServer = metrics.NewServer(cfg.MetricsAddr, logger)
	}

	return orch
}

// Run executes the recording session. It blocks until the session ends,
// whether by signal, configured duration, or every track settling on its
// own. Cancelling ctx also ends the session.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.startTime = time.Now()

	toolVersion, err := process.Probe(o.config.FFmpegPath)
	if err != nil {
		return err
	}
	o.logger.Info("capture_tool_ready",
		"path", o.config.FFmpegPath,
		"version", toolVersion,
	)

	if !o.config.SkipPreflight {
		result := preflight.RunAll(len(o.config.Tracks), o.config.FFmpegPath, o.config.OutputDir)
		preflight.PrintResults(result)
		if !result.Passed {
			return fmt.Errorf("preflight checks failed (use -skip-preflight to override)")
		}
	}

	catalog, err := device.Enumerate(o.config.FFmpegPath)
	if err != nil {
		return fmt.Errorf("enumerate audio devices: %w", err)
	}
	o.logger.Info("device_catalog",
		"devices", len(catalog),
		"backend", device.CurrentBackend().InputFormat,
	)
	if len(catalog) == 0 {
		// Every pattern will miss; the per-track skip path reports it.
		o.logger.Warn("device_catalog_empty")
	}

	if err := os.MkdirAll(o.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if o.config.PrintCmd {
		o.printCommands(catalog)
		return nil
	}

	if started := o.startTracks(ctx, catalog); started == 0 {
		o.logger.Info("nothing_to_record",
			"configured", len(o.config.Tracks),
		)
		fmt.Println("No configured device patterns matched, nothing to record.")
		return nil
	}

	if o.metricsServer != nil {
		if err := o.metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
	}

	// Notify stays installed for the whole session: a second Ctrl-C lands
	// in the buffered channel instead of killing the process mid-ladder.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	var durationTimer <-chan time.Time
	if o.config.Duration > 0 {
		durationTimer = time.After(o.config.Duration)
	}

	settled := o.manager.Settled()

	o.logger.Info("recording",
		"tracks", o.manager.Count(),
		"output_dir", o.config.OutputDir,
	)

	select {
	case sig := <-sigCh:
		o.logger.Info("received_signal", "signal", sig.String())
	case <-durationTimer:
		o.logger.Info("duration_elapsed", "duration", o.config.Duration.String())
	case <-settled:
		o.logger.Info("all_tracks_settled")
	case <-ctx.Done():
		o.logger.Info("context_cancelled")
	}

	cancel()

	ladder := supervisor.StopTimeouts{
		Quit:      o.config.QuitTimeout,
		Interrupt: o.config.InterruptTimeout,
		Terminate: o.config.TerminateTimeout,
	}
	results := o.manager.CollectResults(ladder.Total() + joinMargin)

	for _, res := range results {
		if o.metrics != nil {
			o.metrics.TrackSettled(res.Outcome.String(), res.Duration)
		}
		o.summary.AddReport(stats.TrackReport{
			Label:      res.Label,
			DeviceName: res.DeviceName,
			OutputPath: res.OutputPath,
			Outcome:    res.Outcome.String(),
			ExitCode:   res.ExitCode,
			Duration:   res.Duration,
			Err:        res.Err,
		})
	}

	if o.metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := o.metricsServer.Shutdown(shutdownCtx); err != nil {
			o.logger.Warn("metrics_server_shutdown_error", "error", err)
		}
	}

	// Under the dashboard the alternate screen would swallow the summary,
	// so the caller prints it after the dashboard exits.
	if !o.config.TUIEnabled {
		o.PrintSummary()
	}

	return nil
}

// PrintSummary writes the session exit summary to stdout.
func (o *Orchestrator) PrintSummary() {
	fmt.Print(o.summary.FormatExitSummary(stats.SummaryConfig{
		Elapsed:          time.Since(o.startTime),
		TracksConfigured: len(o.config.Tracks),
		MetricsAddr:      o.config.MetricsAddr,
	}))
}

// startTracks resolves every configured pattern against the catalog and
// launches a supervisor per match. Unmatched patterns are skipped, never
// fatal. Returns the number of tracks started.
func (o *Orchestrator) startTracks(ctx context.Context, catalog device.Catalog) int {
	backend := device.CurrentBackend()
	sessionStart := time.Now()
	ext := process.ExtensionForCodec(o.config.Codec)

	started := 0
	for _, spec := range o.config.Tracks {
		dev, ok := catalog.Resolve(spec.NamePattern)
		if !ok {
			o.logger.Warn("device_not_matched",
				"pattern", spec.NamePattern,
				"label", spec.Label,
			)
			o.summary.AddSkipped(spec.NamePattern)
			if o.metrics != nil {
				o.metrics.TrackSkipped()
			}
			continue
		}

		outputPath := filepath.Join(
			o.config.OutputDir,
			process.OutputFileName(o.config.FilePrefix, spec.Label, sessionStart, ext),
		)

		o.logger.Info("track_resolved",
			"label", spec.Label,
			"pattern", spec.NamePattern,
			"device_index", dev.Index,
			"device_name", dev.Name,
			"output", outputPath,
		)

		o.manager.StartTrack(ctx, supervisor.Config{
			Label:       spec.Label,
			DeviceIndex: dev.Index,
			DeviceName:  dev.Name,
			Selector:    backend.Selector(dev),
			ExtraArgs:   spec.ExtraArgs,
			OutputPath:  outputPath,
			Builder:     o.builder,
			Logger:      o.logger,
			Lines:       logging.NewCaptureLogHandler(spec.Label, o.logger, o.config.Verbose),
			Timeouts: supervisor.StopTimeouts{
				Quit:      o.config.QuitTimeout,
				Interrupt: o.config.InterruptTimeout,
				Terminate: o.config.TerminateTimeout,
			},
			Callbacks: supervisor.Callbacks{
				OnStateChange: o.onTrackStateChange,
				OnStart:       o.onTrackStart,
				OnShutdownStep: func(label, step string) {
					if o.metrics != nil {
						o.metrics.ShutdownStep(step)
					}
				},
			},
		})
		started++
	}

	return started
}

// printCommands shows the capture command per resolved track without
// launching anything.
func (o *Orchestrator) printCommands(catalog device.Catalog) {
	backend := device.CurrentBackend()
	sessionStart := time.Now()
	ext := process.ExtensionForCodec(o.config.Codec)

	for _, spec := range o.config.Tracks {
		dev, ok := catalog.Resolve(spec.NamePattern)
		if !ok {
			fmt.Printf("# %s: no device matches %q\n", spec.Label, spec.NamePattern)
			continue
		}
		outputPath := filepath.Join(
			o.config.OutputDir,
			process.OutputFileName(o.config.FilePrefix, spec.Label, sessionStart, ext),
		)
		fmt.Printf("# %s -> [%d] %s\n", spec.Label, dev.Index, dev.Name)
		fmt.Println(o.builder.CommandString(backend.Selector(dev), spec.ExtraArgs, outputPath))
	}
}

func (o *Orchestrator) onTrackStateChange(label string, oldState, newState supervisor.State) {
	o.logger.Debug("track_state",
		"label", label,
		"from", oldState.String(),
		"to", newState.String(),
	)
}

func (o *Orchestrator) onTrackStart(label string, pid int) {
	if o.metrics != nil {
		o.metrics.TrackStarted()
	}
}

// Manager exposes the track manager for dashboards.
func (o *Orchestrator) Manager() *Manager {
	return o.manager
}

// Summary exposes the session summary for external reporting.
func (o *Orchestrator) Summary() *stats.RunSummary {
	return o.summary
}
