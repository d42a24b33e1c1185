package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// QuitMsg signals the dashboard should exit.
type QuitMsg struct{}

// TrackRow is a point-in-time view of one track as the dashboard displays it.
type TrackRow struct {
	Label      string
	DeviceName string
	State      string
	Elapsed    time.Duration
	OutputPath string
}

// SnapshotFunc supplies the current track rows on each tick.
type SnapshotFunc func() []TrackRow

// Config holds dashboard configuration.
type Config struct {
	Version   string
	OutputDir string

	// Snapshots supplies the track rows rendered on each tick.
	Snapshots SnapshotFunc

	// RequestStop is called once when the user quits the dashboard,
	// so quitting the view also stops the recording session.
	RequestStop func()
}

// Model represents the dashboard state.
type Model struct {
	cfg Config

	rows       []TrackRow
	startTime  time.Time
	lastUpdate time.Time

	width  int
	height int

	stopRequested bool
	quitting      bool
}

// New creates a new dashboard model.
func New(cfg Config) Model {
	return Model{
		cfg:        cfg,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
		width:      80,
		height:     24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.stopRequested && m.cfg.RequestStop != nil {
				m.cfg.RequestStop()
			}
			m.stopRequested = true
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.cfg.Snapshots != nil {
			m.rows = m.cfg.Snapshots()
		}
		m.lastUpdate = time.Now()
		return m, tickCmd()

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Elapsed returns the time since the session started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// SendQuit tells a running dashboard to exit, e.g. when the session ends
// on its own while the dashboard is still up.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
