package config

import (
	"fmt"
	"strings"
)

// ParseTrackSpec parses a -track flag value of the form
// "pattern", "pattern:label", or "pattern:label:extra args".
// The label defaults to the lowercased pattern with spaces collapsed.
func ParseTrackSpec(value string) (TrackSpec, error) {
	parts := strings.SplitN(value, ":", 3)

	pattern := strings.TrimSpace(parts[0])
	if pattern == "" {
		return TrackSpec{}, fmt.Errorf("track %q: device pattern must not be empty", value)
	}

	spec := TrackSpec{
		NamePattern: pattern,
		Label:       defaultLabel(pattern),
	}

	if len(parts) >= 2 {
		label := strings.TrimSpace(parts[1])
		if label != "" {
			spec.Label = label
		}
	}

	if len(parts) == 3 {
		if args := strings.Fields(parts[2]); len(args) > 0 {
			spec.ExtraArgs = args
		}
	}

	return spec, nil
}

// defaultLabel derives a file-name-safe label from a device pattern.
func defaultLabel(pattern string) string {
	label := strings.ToLower(pattern)
	label = strings.Join(strings.Fields(label), "-")
	return label
}

// trackList is a custom flag type for repeatable -track flags.
type trackList []TrackSpec

func (t *trackList) String() string {
	parts := make([]string, 0, len(*t))
	for _, spec := range *t {
		parts = append(parts, spec.NamePattern+":"+spec.Label)
	}
	return strings.Join(parts, ", ")
}

func (t *trackList) Set(value string) error {
	spec, err := ParseTrackSpec(value)
	if err != nil {
		return err
	}
	*t = append(*t, spec)
	return nil
}
