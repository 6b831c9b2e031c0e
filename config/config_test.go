package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"acecast/internal/event"
	"acecast/internal/launch"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Image != launch.DefaultImage {
		t.Errorf("Image = %q", cfg.Image)
	}
	if cfg.DefaultPort != event.DefaultPort {
		t.Errorf("DefaultPort = %d", cfg.DefaultPort)
	}
	if cfg.DefaultTracker != event.DefaultTracker {
		t.Errorf("DefaultTracker = %q", cfg.DefaultTracker)
	}
}

func TestLoadFilePartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "store: /tmp/my-events.csv\npoll:\n  attempts: 3\n  warmup-seconds: 1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.StorePath != "/tmp/my-events.csv" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	// Unset fields keep their defaults.
	if cfg.Image != launch.DefaultImage {
		t.Errorf("Image = %q, want default", cfg.Image)
	}

	policy := cfg.PollPolicy()
	if policy.Attempts != 3 {
		t.Errorf("Attempts = %d", policy.Attempts)
	}
	if policy.Warmup != time.Second {
		t.Errorf("Warmup = %v", policy.Warmup)
	}
	// Untuned knobs fall back to the poller defaults.
	if policy.Interval != 5*time.Second {
		t.Errorf("Interval = %v", policy.Interval)
	}
	if policy.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", policy.Timeout)
	}
}

func TestLoadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
