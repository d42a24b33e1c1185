package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()
	var tracks trackList

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `cluck - concurrent multi-track audio recording with FFmpeg

Usage:
  cluck [flags]

Track Flags:
`)
		printFlagCategory([]string{"track"})

		fmt.Fprintf(os.Stderr, "\nOutput:\n")
		printFlagCategory([]string{"output-dir", "prefix"})

		fmt.Fprintf(os.Stderr, "\nEncoding:\n")
		printFlagCategory([]string{"ffmpeg", "codec", "bitrate", "channels", "sample-rate"})

		fmt.Fprintf(os.Stderr, "\nOrchestration:\n")
		printFlagCategory([]string{"duration", "quit-timeout", "interrupt-timeout", "terminate-timeout"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory([]string{"print-cmd", "list", "skip-preflight"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Record the default track map (Jabra, BlackHole, MacBook mics)
  cluck

  # Record two named tracks for an hour
  cluck -track "USB Audio:guest" -track "BlackHole:desktop" -duration 1h

  # Show what would run without recording
  cluck -track Jabra -print-cmd

`)
	}

	// Tracks
	flag.Var(&tracks, "track", `Track to record: "pattern", "pattern:label", or "pattern:label:extra args" (can repeat)`)

	// Output
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for recorded files")
	flag.StringVar(&cfg.FilePrefix, "prefix", cfg.FilePrefix, "File name prefix for recordings")

	// Encoding
	flag.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to FFmpeg binary")
	flag.StringVar(&cfg.Codec, "codec", cfg.Codec, "Audio codec (aac, libmp3lame, flac, pcm_s16le)")
	flag.StringVar(&cfg.Bitrate, "bitrate", cfg.Bitrate, "Audio bitrate")
	flag.IntVar(&cfg.Channels, "channels", cfg.Channels, "Channels per track")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Sample rate in Hz")

	// Orchestration
	flag.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Recording duration (0 = until Ctrl-C)")
	flag.DurationVar(&cfg.QuitTimeout, "quit-timeout", cfg.QuitTimeout, "Wait after the cooperative quit byte")
	flag.DurationVar(&cfg.InterruptTimeout, "interrupt-timeout", cfg.InterruptTimeout, "Wait after the interrupt signal")
	flag.DurationVar(&cfg.TerminateTimeout, "terminate-timeout", cfg.TerminateTimeout, "Wait after the terminate signal")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")

	// Diagnostics
	flag.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print FFmpeg commands and exit")
	flag.BoolVar(&cfg.ListDevices, "list", cfg.ListDevices, "List audio devices and exit")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	// Parse
	flag.Parse()

	if len(tracks) > 0 {
		cfg.Tracks = tracks
	} else {
		cfg.Tracks = DefaultTracks()
	}

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}

	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
