package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jg/cluck/internal/supervisor"
)

// TrackSnapshot is a point-in-time view of one track for dashboards.
type TrackSnapshot struct {
	Label       string
	DeviceName  string
	DeviceIndex int
	State       supervisor.State
	Elapsed     time.Duration
	OutputPath  string
}

// Manager coordinates the track supervisors of one recording session. Each
// supervisor runs in its own goroutine and reports exactly one Result.
type Manager struct {
	logger *slog.Logger

	mu          sync.RWMutex
	supervisors []*supervisor.Supervisor
	results     []supervisor.Result

	wg sync.WaitGroup
}

// NewManager creates an empty track manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logger}
}

// StartTrack launches one supervised track. The supervisor settles either
// when its subprocess exits or when ctx is cancelled.
func (m *Manager) StartTrack(ctx context.Context, cfg supervisor.Config) {
	sup := supervisor.New(cfg)

	m.mu.Lock()
	m.supervisors = append(m.supervisors, sup)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		res := sup.Run(ctx)

		m.mu.Lock()
		m.results = append(m.results, res)
		m.mu.Unlock()
	}()
}

// Settled returns a channel closed once every started track has reported.
// Call after all StartTrack calls have been made.
func (m *Manager) Settled() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(ch)
	}()
	return ch
}

// CollectResults waits up to timeout for all tracks to settle and returns
// the results gathered so far. A short timeout can return fewer results
// than tracks; the missing ones are logged, not invented.
func (m *Manager) CollectResults(timeout time.Duration) []supervisor.Result {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		m.logger.Warn("track_join_timeout",
			"timeout", timeout.String(),
			"settled", len(m.Results()),
			"started", m.Count(),
		)
	}

	return m.Results()
}

// Results returns a copy of the results reported so far.
func (m *Manager) Results() []supervisor.Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]supervisor.Result, len(m.results))
	copy(out, m.results)
	return out
}

// Count returns the number of started tracks.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.supervisors)
}

// ActiveCount returns the number of tracks not yet in a terminal state.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := 0
	for _, sup := range m.supervisors {
		if !sup.State().IsTerminal() {
			active++
		}
	}
	return active
}

// Snapshots returns a point-in-time view of every started track.
func (m *Manager) Snapshots() []TrackSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]TrackSnapshot, 0, len(m.supervisors))
	for _, sup := range m.supervisors {
		snaps = append(snaps, TrackSnapshot{
			Label:       sup.Label(),
			DeviceName:  sup.DeviceName(),
			DeviceIndex: sup.DeviceIndex(),
			State:       sup.State(),
			Elapsed:     sup.Uptime(),
			OutputPath:  sup.OutputPath(),
		})
	}
	return snaps
}
