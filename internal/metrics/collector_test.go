package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollectorWithRegistry(CollectorConfig{
		Version:  "test",
		Tracks:   3,
		Duration: time.Minute,
	}, prometheus.NewRegistry())
}

func TestCollectorTrackLifecycle(t *testing.T) {
	c := newTestCollector(t)

	c.TrackStarted()
	c.TrackStarted()
	c.TrackStarted()
	if got := c.TotalStarts(); got != 3 {
		t.Errorf("TotalStarts() = %d, want 3", got)
	}
	if got := c.PeakActive(); got != 3 {
		t.Errorf("PeakActive() = %d, want 3", got)
	}

	c.TrackSettled("stopped", 10*time.Second)
	c.TrackSettled("stopped", 12*time.Second)
	c.TrackSettled("failed", time.Second)

	stopped, failed := c.Totals()
	if stopped != 2 {
		t.Errorf("stopped = %d, want 2", stopped)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	// Peak is sticky after settlement
	if got := c.PeakActive(); got != 3 {
		t.Errorf("PeakActive() after settle = %d, want 3", got)
	}
}

func TestCollectorSkips(t *testing.T) {
	c := newTestCollector(t)

	c.TrackSkipped()
	c.TrackSkipped()
	if got := c.TotalSkips(); got != 2 {
		t.Errorf("TotalSkips() = %d, want 2", got)
	}
	if got := c.TotalStarts(); got != 0 {
		t.Errorf("TotalStarts() = %d, want 0", got)
	}
}

func TestCollectorSettleWithoutStart(t *testing.T) {
	c := newTestCollector(t)

	// A settlement with no matching start must not drive active negative.
	c.TrackSettled("failed", 0)
	stopped, failed := c.Totals()
	if stopped != 0 || failed != 1 {
		t.Errorf("Totals() = (%d, %d), want (0, 1)", stopped, failed)
	}
}

func TestCollectorShutdownSteps(t *testing.T) {
	c := newTestCollector(t)

	// Counter-only path, just confirm it does not panic per step name.
	for _, step := range []string{"quit", "interrupt", "terminate", "kill"} {
		c.ShutdownStep(step)
	}
}
