package logging

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	// MaxLineLength is the maximum length of a single diagnostic line before truncation.
	MaxLineLength = 4096

	// MaxBufferedLines is the maximum number of lines retained per track.
	MaxBufferedLines = 100
)

// CaptureLogHandler handles the diagnostic (stderr) output of one capture
// subprocess. It buffers recent lines so the last real error can be attached
// to a failed track, and forwards lines to the structured logger at a level
// derived from their content.
type CaptureLogHandler struct {
	label   string
	logger  *slog.Logger
	verbose bool

	// Circular buffer for recent lines
	buffer []string
	bufIdx int
	mu     sync.Mutex
}

// NewCaptureLogHandler creates a diagnostic line handler for a track.
func NewCaptureLogHandler(label string, logger *slog.Logger, verbose bool) *CaptureLogHandler {
	return &CaptureLogHandler{
		label:   label,
		logger:  logger,
		verbose: verbose,
		buffer:  make([]string, MaxBufferedLines),
	}
}

// HandleReader reads from an io.Reader and processes each line.
// This should be run in a goroutine; it returns when the reader is exhausted.
func (h *CaptureLogHandler) HandleReader(r io.Reader) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, MaxLineLength)
	scanner.Buffer(buf, MaxLineLength)

	for scanner.Scan() {
		h.HandleLine(scanner.Text())
	}
}

// HandleLine processes a single line of diagnostic output.
func (h *CaptureLogHandler) HandleLine(line string) {
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength] + "...(truncated)"
	}

	h.mu.Lock()
	h.buffer[h.bufIdx] = line
	h.bufIdx = (h.bufIdx + 1) % MaxBufferedLines
	h.mu.Unlock()

	h.logLine(line)
}

// logLine logs the line at a level based on its content.
func (h *CaptureLogHandler) logLine(line string) {
	level := classifyLine(line)

	// In non-verbose mode, encoder chatter stays out of the log.
	if !h.verbose && level == slog.LevelDebug {
		return
	}

	h.logger.Log(nil, level, "capture_output",
		"label", h.label,
		"line", line,
	)
}

// classifyLine determines the log level for a line based on content.
func classifyLine(line string) slog.Level {
	lower := strings.ToLower(line)

	if strings.Contains(lower, "error") ||
		strings.Contains(lower, "device or resource busy") ||
		strings.Contains(lower, "input/output error") ||
		strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "no such") {
		return slog.LevelWarn
	}

	if strings.Contains(lower, "overrun") ||
		strings.Contains(lower, "non-monotonic") ||
		strings.Contains(lower, "queue input is backward") {
		return slog.LevelWarn
	}

	// Encoder progress lines ("size= ... time= ... bitrate=").
	if strings.Contains(lower, "size=") ||
		strings.Contains(lower, "time=") ||
		strings.Contains(lower, "bitrate=") {
		return slog.LevelDebug
	}

	return slog.LevelDebug
}

// RecentLines returns the most recent lines from the buffer, oldest first.
func (h *CaptureLogHandler) RecentLines(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > MaxBufferedLines {
		n = MaxBufferedLines
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (h.bufIdx - n + i + MaxBufferedLines) % MaxBufferedLines
		if h.buffer[idx] != "" {
			lines = append(lines, h.buffer[idx])
		}
	}

	return lines
}

// LastError returns the most recent buffered line that classifies as a
// warning or worse, or "" if none was seen. Used to annotate failed tracks.
func (h *CaptureLogHandler) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := 0; i < MaxBufferedLines; i++ {
		idx := (h.bufIdx - 1 - i + MaxBufferedLines) % MaxBufferedLines
		line := h.buffer[idx]
		if line == "" {
			continue
		}
		if classifyLine(line) >= slog.LevelWarn {
			return line
		}
	}
	return ""
}
