package config

import (
	"errors"
	"fmt"
	"regexp"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var bitratePattern = regexp.MustCompile(`^\d+[kKmM]?$`)

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// At least one track, unless only listing devices
	if len(cfg.Tracks) == 0 && !cfg.ListDevices {
		errs = append(errs, ValidationError{
			Field:   "track",
			Message: "at least one track is required",
		})
	}

	// Track patterns must be non-empty and labels unique
	seen := make(map[string]bool, len(cfg.Tracks))
	for i, spec := range cfg.Tracks {
		if spec.NamePattern == "" {
			errs = append(errs, ValidationError{
				Field:   "track",
				Message: fmt.Sprintf("track %d has an empty device pattern", i),
			})
		}
		if spec.Label == "" {
			errs = append(errs, ValidationError{
				Field:   "track",
				Message: fmt.Sprintf("track %d has an empty label", i),
			})
			continue
		}
		if seen[spec.Label] {
			errs = append(errs, ValidationError{
				Field:   "track",
				Message: fmt.Sprintf("duplicate label %q (labels name output files)", spec.Label),
			})
		}
		seen[spec.Label] = true
	}

	if cfg.OutputDir == "" {
		errs = append(errs, ValidationError{
			Field:   "output_dir",
			Message: "must not be empty",
		})
	}

	if cfg.FilePrefix == "" {
		errs = append(errs, ValidationError{
			Field:   "prefix",
			Message: "must not be empty",
		})
	}

	if cfg.Channels < 1 {
		errs = append(errs, ValidationError{
			Field:   "channels",
			Message: "must be at least 1",
		})
	}

	if cfg.SampleRate < 8000 {
		errs = append(errs, ValidationError{
			Field:   "sample_rate",
			Message: fmt.Sprintf("must be at least 8000 Hz (got %d)", cfg.SampleRate),
		})
	}

	if cfg.Bitrate != "" && !bitratePattern.MatchString(cfg.Bitrate) {
		errs = append(errs, ValidationError{
			Field:   "bitrate",
			Message: fmt.Sprintf(`must look like "128k" (got %q)`, cfg.Bitrate),
		})
	}

	if cfg.Duration < 0 {
		errs = append(errs, ValidationError{
			Field:   "duration",
			Message: "must not be negative",
		})
	}

	// Ladder steps must each be positive so escalation stays bounded
	for _, step := range []struct {
		field string
		ok    bool
	}{
		{"quit_timeout", cfg.QuitTimeout > 0},
		{"interrupt_timeout", cfg.InterruptTimeout > 0},
		{"terminate_timeout", cfg.TerminateTimeout > 0},
	} {
		if !step.ok {
			errs = append(errs, ValidationError{
				Field:   step.field,
				Message: "must be positive",
			})
		}
	}

	// Log format must be valid
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
