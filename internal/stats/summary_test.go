package stats

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Minute, "00:01:00"},
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + 3*time.Minute + 4*time.Second, "25:03:04"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2_048, "2.05 KB"},
		{5_300_000, "5.30 MB"},
		{2_000_000_000, "2.00 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRunSummaryQuantiles(t *testing.T) {
	r := NewRunSummary()

	if r.DurationQuantile(0.5) != 0 {
		t.Error("empty summary should report zero quantiles")
	}

	for _, d := range []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second} {
		r.AddReport(TrackReport{Label: "t", Outcome: "stopped", Duration: d})
	}

	p50 := r.DurationQuantile(0.5)
	if p50 < 10*time.Second || p50 > 30*time.Second {
		t.Errorf("P50 = %v, want within recorded range", p50)
	}
	max := r.DurationQuantile(1.0)
	if max < 29*time.Second {
		t.Errorf("max quantile = %v, want ~30s", max)
	}
}

func TestFormatExitSummary(t *testing.T) {
	r := NewRunSummary()
	r.AddReport(TrackReport{
		Label:      "mic-jabra",
		DeviceName: "Jabra SPEAK 510 USB",
		OutputPath: "/tmp/record-mic-jabra-2026-08-26_10-00-00.m4a",
		Outcome:    "stopped",
		Duration:   65 * time.Second,
	})
	r.AddReport(TrackReport{
		Label:    "blackhole",
		Outcome:  "failed",
		ExitCode: 1,
		Duration: 2 * time.Second,
		Err:      errors.New("device busy"),
	})
	r.AddSkipped("MacBook")

	out := r.FormatExitSummary(SummaryConfig{
		Elapsed:          70 * time.Second,
		TracksConfigured: 3,
		MetricsAddr:      "localhost:9090",
	})

	for _, want := range []string{
		"Recording Summary",
		"Session Duration:       00:01:10",
		"Tracks Configured:      3",
		"Tracks Recorded:        1",
		"Tracks Failed:          1",
		"Tracks Skipped:         1 (MacBook)",
		"mic-jabra",
		"record-mic-jabra-2026-08-26_10-00-00.m4a",
		"device busy",
		"Exit Codes",
		"(error)",
		"http://localhost:9090/metrics",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	// A failed track must not advertise an output path.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "blackhole") && strings.Contains(line, ".m4a") {
			t.Errorf("failed track shows an output path: %q", line)
		}
	}
}

func TestFormatExitSummaryNoTracks(t *testing.T) {
	r := NewRunSummary()
	out := r.FormatExitSummary(SummaryConfig{TracksConfigured: 0})

	if !strings.Contains(out, "Tracks Configured:      0") {
		t.Errorf("summary missing track count:\n%s", out)
	}
	if strings.Contains(out, "Duration Distribution") {
		t.Error("distribution section should be omitted with no tracks")
	}
}

func TestExitCodeLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "(clean)"},
		{1, "(error)"},
		{130, "(SIGINT)"},
		{137, "(SIGKILL)"},
		{143, "(SIGTERM)"},
		{42, ""},
	}

	for _, tt := range tests {
		if got := exitCodeLabel(tt.code); got != tt.want {
			t.Errorf("exitCodeLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
