// Package stats collects per-track results and formats the exit summary
// displayed when a recording session ends.
package stats

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// TrackReport is the settled result of one track as the summary shows it.
type TrackReport struct {
	Label      string
	DeviceName string
	OutputPath string
	Outcome    string // "stopped" or "failed"
	ExitCode   int
	Duration   time.Duration
	Err        error
}

// RunSummary accumulates track reports over a session. Safe for use from
// multiple goroutines.
type RunSummary struct {
	mu      sync.Mutex
	reports []TrackReport
	skipped []string // patterns that matched no device
	digest  *tdigest.TDigest
	samples int
}

// NewRunSummary creates an empty session summary.
func NewRunSummary() *RunSummary {
	return &RunSummary{
		digest: tdigest.NewWithCompression(100), // ~100 centroids, ~10KB
	}
}

// AddReport records one settled track.
func (r *RunSummary) AddReport(report TrackReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	if report.Duration > 0 {
		r.digest.Add(float64(report.Duration.Nanoseconds()), 1)
		r.samples++
	}
}

// AddSkipped records a track pattern that resolved to no device.
func (r *RunSummary) AddSkipped(pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, pattern)
}

// Reports returns a copy of the recorded track reports.
func (r *RunSummary) Reports() []TrackReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TrackReport, len(r.reports))
	copy(out, r.reports)
	return out
}

// DurationQuantile returns the q-th quantile of recorded track durations.
func (r *RunSummary) DurationQuantile(q float64) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.samples == 0 {
		return 0
	}
	return time.Duration(r.digest.Quantile(q))
}

// SummaryConfig holds session-level fields for summary formatting.
type SummaryConfig struct {
	// Elapsed is the wall time of the whole session
	Elapsed time.Duration

	// TracksConfigured is the number of tracks requested
	TracksConfigured int

	// MetricsAddr is the Prometheus endpoint address, if enabled
	MetricsAddr string
}

const summaryRule = "═══════════════════════════════════════════════════════════════════════════════\n"
const summarySubRule = "───────────────────────────────────────────────────────────────────────────────\n"

// FormatExitSummary formats the session results for display at exit.
func (r *RunSummary) FormatExitSummary(cfg SummaryConfig) string {
	reports := r.Reports()

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(summaryRule)
	b.WriteString("                             cluck Recording Summary\n")
	b.WriteString(summaryRule)
	b.WriteString("\n")

	stopped, failed := 0, 0
	for _, rep := range reports {
		if rep.Outcome == "stopped" {
			stopped++
		} else {
			failed++
		}
	}

	fmt.Fprintf(&b, "Session Duration:       %s\n", FormatDuration(cfg.Elapsed))
	fmt.Fprintf(&b, "Tracks Configured:      %d\n", cfg.TracksConfigured)
	fmt.Fprintf(&b, "Tracks Recorded:        %d\n", stopped)
	if failed > 0 {
		fmt.Fprintf(&b, "Tracks Failed:          %d\n", failed)
	}
	if len(r.skipped) > 0 {
		fmt.Fprintf(&b, "Tracks Skipped:         %d (%s)\n", len(r.skipped), strings.Join(r.skipped, ", "))
	}
	b.WriteString("\n")

	if len(reports) > 0 {
		b.WriteString(summarySubRule)
		b.WriteString("                                    Tracks\n")
		b.WriteString(summarySubRule)
		b.WriteString("\n")

		fmt.Fprintf(&b, "  %-16s %-10s %-10s %s\n", "Track", "Outcome", "Duration", "Output")
		b.WriteString("  " + strings.Repeat("─", 70) + "\n")
		for _, rep := range reports {
			out := rep.OutputPath
			if rep.Outcome != "stopped" {
				out = "-"
			}
			fmt.Fprintf(&b, "  %-16s %-10s %-10s %s\n",
				rep.Label,
				rep.Outcome,
				FormatDuration(rep.Duration),
				out,
			)
			if rep.Err != nil {
				fmt.Fprintf(&b, "  %-16s   %v\n", "", rep.Err)
			}
		}
		b.WriteString("\n")
	}

	// Duration spread only says something with several tracks
	if r.samples >= 2 {
		b.WriteString(summarySubRule)
		b.WriteString("                             Duration Distribution\n")
		b.WriteString(summarySubRule)
		b.WriteString("\n")

		fmt.Fprintf(&b, "  P50 (median):         %s\n", FormatDuration(r.DurationQuantile(0.5)))
		fmt.Fprintf(&b, "  P95:                  %s\n", FormatDuration(r.DurationQuantile(0.95)))
		fmt.Fprintf(&b, "  Max:                  %s\n", FormatDuration(r.DurationQuantile(1.0)))
		b.WriteString("\n")
	}

	if failed > 0 {
		b.WriteString(summarySubRule)
		b.WriteString("                                 Exit Codes\n")
		b.WriteString(summarySubRule)
		b.WriteString("\n")

		for _, rep := range reports {
			if rep.Outcome == "stopped" {
				continue
			}
			fmt.Fprintf(&b, "  %-16s %3d %s\n", rep.Label, rep.ExitCode, exitCodeLabel(rep.ExitCode))
		}
		b.WriteString("\n")
	}

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString(summaryRule)

	return b.String()
}

// exitCodeLabel returns a human-readable label for common exit codes.
func exitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(clean)"
	case 1:
		return "(error)"
	case 130:
		return "(SIGINT)"
	case 137:
		return "(SIGKILL)"
	case 143:
		return "(SIGTERM)"
	default:
		return ""
	}
}

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatBytes formats bytes with KB/MB/GB suffixes.
func FormatBytes(n int64) string {
	if n >= 1_000_000_000 {
		return fmt.Sprintf("%.2f GB", float64(n)/1_000_000_000)
	}
	if n >= 1_000_000 {
		return fmt.Sprintf("%.2f MB", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.2f KB", float64(n)/1_000)
	}
	return fmt.Sprintf("%d B", n)
}
