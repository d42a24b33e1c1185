package preflight

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheck_String(t *testing.T) {
	t.Run("passed_with_required", func(t *testing.T) {
		c := Check{
			Name:     "test_check",
			Required: 100,
			Actual:   200,
			Passed:   true,
		}
		s := c.String()
		if !strings.Contains(s, "✓") {
			t.Error("Passed check should have ✓")
		}
		if !strings.Contains(s, "200") {
			t.Error("Should contain actual value")
		}
		if !strings.Contains(s, "100") {
			t.Error("Should contain required value")
		}
	})

	t.Run("failed_check", func(t *testing.T) {
		c := Check{
			Name:     "test_check",
			Required: 100,
			Actual:   50,
			Passed:   false,
		}
		s := c.String()
		if !strings.Contains(s, "✗") {
			t.Error("Failed check should have ✗")
		}
	})

	t.Run("warning_check", func(t *testing.T) {
		c := Check{
			Name:    "test_check",
			Passed:  true,
			Warning: true,
			Message: "warning message",
		}
		s := c.String()
		if !strings.Contains(s, "⚠") {
			t.Error("Warning check should have ⚠")
		}
		if !strings.Contains(s, "warning message") {
			t.Error("Should contain message")
		}
	})
}

func TestRunAll_WithFFmpeg(t *testing.T) {
	// Check if ffmpeg is available
	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available, skipping integration test")
	}

	result := RunAll(3, "ffmpeg", t.TempDir())

	if result == nil {
		t.Fatal("RunAll returned nil")
	}

	if len(result.Checks) < 3 {
		t.Errorf("Expected at least 3 checks, got %d", len(result.Checks))
	}

	foundFFmpeg := false
	for _, check := range result.Checks {
		if check.Name == "ffmpeg" {
			foundFFmpeg = true
			if !check.Passed {
				t.Errorf("FFmpeg check should pass when ffmpeg is available: %s", check.Message)
			}
		}
	}
	if !foundFFmpeg {
		t.Error("Expected ffmpeg check in results")
	}
}

func TestRunAll_WithInvalidFFmpegPath(t *testing.T) {
	result := RunAll(3, "/nonexistent/ffmpeg/path", t.TempDir())

	if result == nil {
		t.Fatal("RunAll returned nil")
	}

	foundFFmpeg := false
	for _, check := range result.Checks {
		if check.Name == "ffmpeg" {
			foundFFmpeg = true
			if check.Passed {
				t.Error("FFmpeg check should fail with invalid path")
			}
		}
	}
	if !foundFFmpeg {
		t.Error("Expected ffmpeg check in results")
	}
	if result.Passed {
		t.Error("Overall result should fail when ffmpeg is missing")
	}
}

func TestCheckOutputDir(t *testing.T) {
	t.Run("writable", func(t *testing.T) {
		c := checkOutputDir(t.TempDir())
		if !c.Passed {
			t.Errorf("writable dir should pass: %s", c.Message)
		}
	})

	t.Run("creates_missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "recordings")
		c := checkOutputDir(dir)
		if !c.Passed {
			t.Errorf("missing dir should be created: %s", c.Message)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory was not created: %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		c := checkOutputDir("")
		if c.Passed {
			t.Error("empty dir should fail")
		}
	})

	t.Run("not_writable", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root can write anywhere")
		}
		dir := filepath.Join(t.TempDir(), "ro")
		if err := os.Mkdir(dir, 0o555); err != nil {
			t.Fatal(err)
		}
		c := checkOutputDir(dir)
		if c.Passed {
			t.Error("read-only dir should fail")
		}
	})
}

func TestCheckFileDescriptors(t *testing.T) {
	c := checkFileDescriptors(2)
	if c.Name != "file_descriptors" {
		t.Errorf("Name = %q", c.Name)
	}
	// A two-track run needs only ~100 descriptors, which every sane
	// environment provides.
	if !c.Passed && !c.Warning {
		t.Errorf("fd check unexpectedly failed: %s", c.Message)
	}
}

func TestSuggestFix(t *testing.T) {
	for _, name := range []string{"ffmpeg", "output_dir", "file_descriptors", "anything_else"} {
		if suggestFix(name) == "" {
			t.Errorf("suggestFix(%q) returned empty string", name)
		}
	}
}
