// Package main provides the cluck CLI entry point.
//
// cluck records multiple audio devices concurrently, one FFmpeg capture
// process per matched device, and stops them all cleanly on Ctrl-C.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jg/cluck/internal/config"
	"github.com/jg/cluck/internal/device"
	"github.com/jg/cluck/internal/logging"
	"github.com/jg/cluck/internal/orchestrator"
	"github.com/jg/cluck/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/cluck
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("cluck %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// When the dashboard is enabled, suppress logs so they do not fight
	// the terminal renderer.
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	if cfg.ListDevices {
		return listDevices(cfg)
	}

	orch := orchestrator.New(cfg, logger, version)

	if !cfg.TUIEnabled {
		if !cfg.PrintCmd {
			printBanner(cfg)
		}
		if err := orch.Run(context.Background()); err != nil {
			logger.Error("orchestrator_failed", "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	return runWithDashboard(cfg, orch, logger)
}

// runWithDashboard runs the session with the live terminal dashboard in the
// foreground and the orchestrator in a goroutine. Quitting the dashboard
// stops the session; the session ending closes the dashboard.
func runWithDashboard(cfg *config.Config, orch *orchestrator.Orchestrator, logger *slog.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.New(tui.Config{
		Version:     version,
		OutputDir:   cfg.OutputDir,
		Snapshots:   func() []tui.TrackRow { return trackRows(orch.Manager()) },
		RequestStop: cancel,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	errCh := make(chan error, 1)
	go func() {
		errCh <- orch.Run(ctx)
		tui.SendQuit(program)
	}()

	if _, err := program.Run(); err != nil {
		logger.Error("dashboard_failed", "error", err)
	}
	cancel()

	runErr := <-errCh

	// The alternate screen is gone now, so the summary stays visible.
	orch.PrintSummary()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

// trackRows adapts manager snapshots to dashboard rows.
func trackRows(m *orchestrator.Manager) []tui.TrackRow {
	snaps := m.Snapshots()
	rows := make([]tui.TrackRow, 0, len(snaps))
	for _, snap := range snaps {
		rows = append(rows, tui.TrackRow{
			Label:      snap.Label,
			DeviceName: snap.DeviceName,
			State:      snap.State.String(),
			Elapsed:    snap.Elapsed,
			OutputPath: snap.OutputPath,
		})
	}
	return rows
}

// listDevices prints the audio device catalog and exits.
func listDevices(cfg *config.Config) int {
	catalog, err := device.Enumerate(cfg.FFmpegPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(catalog) == 0 {
		fmt.Println("No audio devices found.")
		return 0
	}

	fmt.Println("Audio devices:")
	for _, dev := range catalog {
		fmt.Printf("  [%d] %s\n", dev.Index, dev.Name)
	}
	return 0
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                              cluck                                ║")
	fmt.Println("║            Multi-Track Audio Recording with FFmpeg                ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Tracks:      %d configured\n", len(cfg.Tracks))
	for _, spec := range cfg.Tracks {
		fmt.Printf("               %-16s matches %q\n", spec.Label, spec.NamePattern)
	}
	fmt.Printf("  Output:      %s\n", cfg.OutputDir)
	fmt.Printf("  Encoding:    %s %s, %d Hz, %d ch\n", cfg.Codec, cfg.Bitrate, cfg.SampleRate, cfg.Channels)
	if cfg.Duration > 0 {
		fmt.Printf("  Duration:    %s\n", cfg.Duration)
	}
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop and save.")
	fmt.Println()
}
