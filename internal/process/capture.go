// Package process builds and probes the external capture tool invocations.
package process

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jg/cluck/internal/device"
)

// CaptureConfig holds the encoder parameters shared by every track.
type CaptureConfig struct {
	// BinaryPath is the path to the capture tool binary.
	BinaryPath string

	// InputFormat is the capture input format (platform backend default
	// unless overridden).
	InputFormat string

	// Channels is the output channel count.
	Channels int

	// SampleRate is the output sample rate in Hz.
	SampleRate int

	// Codec is the audio codec passed to the encoder.
	Codec string

	// Bitrate is the encoder bitrate (e.g. "128k").
	Bitrate string

	// LogLevel is the capture tool log level for the diagnostic channel.
	LogLevel string
}

// DefaultCaptureConfig returns a CaptureConfig matching the recorder defaults:
// AAC at 128k, 44.1 kHz mono, per-speaker voice tracks.
func DefaultCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		BinaryPath:  "ffmpeg",
		InputFormat: device.CurrentBackend().InputFormat,
		Channels:    1,
		SampleRate:  44100,
		Codec:       "aac",
		Bitrate:     "128k",
		LogLevel:    "info",
	}
}

// CaptureBuilder builds capture commands for tracks.
type CaptureBuilder struct {
	config *CaptureConfig
}

// NewCaptureBuilder creates a builder with the given configuration.
func NewCaptureBuilder(cfg *CaptureConfig) *CaptureBuilder {
	return &CaptureBuilder{config: cfg}
}

// Name returns the capture tool name.
func (b *CaptureBuilder) Name() string {
	return "ffmpeg"
}

// BuildCommand creates the capture command for one track. The command is
// deliberately not bound to a context: the supervisor owns termination via
// its escalation ladder, and a context cancel would kill the process outright
// and truncate the capture file.
func (b *CaptureBuilder) BuildCommand(selector string, extraArgs []string, outputPath string) (*exec.Cmd, error) {
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	args := b.buildArgs(selector, extraArgs, outputPath)
	return exec.Command(b.config.BinaryPath, args...), nil
}

// buildArgs constructs the capture command-line arguments.
func (b *CaptureBuilder) buildArgs(selector string, extraArgs []string, outputPath string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", b.config.LogLevel,
		"-y",
		"-f", b.config.InputFormat,
	}

	// Per-device input options (e.g. timestamp handling) go before -i.
	args = append(args, extraArgs...)

	args = append(args,
		"-i", selector,
		"-ac", strconv.Itoa(b.config.Channels),
		"-ar", strconv.Itoa(b.config.SampleRate),
		"-c:a", b.config.Codec,
		"-b:a", b.config.Bitrate,
		outputPath,
	)

	return args
}

// CommandString returns the shell-style command line for one track, for the
// print-cmd diagnostic mode.
func (b *CaptureBuilder) CommandString(selector string, extraArgs []string, outputPath string) string {
	args := b.buildArgs(selector, extraArgs, outputPath)

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, b.config.BinaryPath)
	for _, a := range args {
		if strings.ContainsAny(a, " \t\"'") || a == "" {
			parts = append(parts, strconv.Quote(a))
		} else {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// Config returns the builder's configuration.
func (b *CaptureBuilder) Config() *CaptureConfig {
	return b.config
}

// OutputFileName returns the deterministic file name for a track: the
// configured prefix, the track label, and the start timestamp.
func OutputFileName(prefix, label string, start time.Time, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", prefix, label, start.Format("2006-01-02_15-04-05"), ext)
}

// codecExtensions maps codec names to output container extensions.
var codecExtensions = map[string]string{
	"aac":        "m4a",
	"alac":       "m4a",
	"libmp3lame": "mp3",
	"mp3":        "mp3",
	"flac":       "flac",
	"libopus":    "ogg",
	"opus":       "ogg",
	"pcm_s16le":  "wav",
}

// ExtensionForCodec returns the container extension for a codec, defaulting
// to m4a for unknown codecs.
func ExtensionForCodec(codec string) string {
	if ext, ok := codecExtensions[codec]; ok {
		return ext
	}
	return "m4a"
}
