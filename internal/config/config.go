// Package config provides configuration management for cluck.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// TrackSpec describes one requested recording track: a device name pattern
// to resolve against the catalog, a label used in file names and logs, and
// optional extra encoder arguments.
type TrackSpec struct {
	NamePattern string   `json:"name_pattern"`
	Label       string   `json:"label"`
	ExtraArgs   []string `json:"extra_args,omitempty"`
}

// Config holds all configuration options for the orchestrator.
type Config struct {
	// Tracks
	Tracks []TrackSpec `json:"tracks"`

	// Output
	OutputDir  string `json:"output_dir"`
	FilePrefix string `json:"file_prefix"`

	// Encoding
	FFmpegPath string `json:"ffmpeg_path"`
	Codec      string `json:"codec"`
	Bitrate    string `json:"bitrate"`
	Channels   int    `json:"channels"`
	SampleRate int    `json:"sample_rate"`
	LogLevel   string `json:"ffmpeg_log_level"`

	// Orchestration
	Duration time.Duration `json:"duration"` // 0 = until signalled

	// Shutdown ladder
	QuitTimeout      time.Duration `json:"quit_timeout"`
	InterruptTimeout time.Duration `json:"interrupt_timeout"`
	TerminateTimeout time.Duration `json:"terminate_timeout"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	ListDevices   bool `json:"list_devices"`
	SkipPreflight bool `json:"skip_preflight"`
}

// DefaultTracks returns the built-in track map used when no -track flags
// are given: a headset mic, a loopback capture device, and the built-in mic.
func DefaultTracks() []TrackSpec {
	return []TrackSpec{
		{NamePattern: "Jabra", Label: "mic-jabra"},
		{NamePattern: "BlackHole", Label: "blackhole"},
		{NamePattern: "MacBook", Label: "mic-macbook"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Tracks: nil, // DefaultTracks applied after flag parsing

		// Output
		OutputDir:  defaultOutputDir(),
		FilePrefix: "record",

		// Encoding
		FFmpegPath: "ffmpeg",
		Codec:      "aac",
		Bitrate:    "128k",
		Channels:   1,
		SampleRate: 44100,
		LogLevel:   "info",

		// Orchestration
		Duration: 0, // Until signalled

		// Shutdown ladder
		QuitTimeout:      5 * time.Second,
		InterruptTimeout: 5 * time.Second,
		TerminateTimeout: 2 * time.Second,

		// Observability
		MetricsAddr: "", // Disabled
		Verbose:     false,
		LogFormat:   "text",
		TUIEnabled:  false,
	}
}

// defaultOutputDir prefers ~/Downloads, falling back to the working
// directory when no home is resolvable.
func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
