package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-desktop/discover/pkg/config"
)

func TestLoadWithMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discovery.Days != 30 {
		t.Fatalf("days = %d, want default 30", cfg.Discovery.Days)
	}
	if cfg.Persistence.Path != "discover.db" {
		t.Fatalf("persistence path = %q, want default", cfg.Persistence.Path)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "discover.yaml")
	content := "discovery:\n  days: 90\n  continuous: true\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discovery.Days != 90 {
		t.Fatalf("days = %d, want 90", cfg.Discovery.Days)
	}
	if !cfg.Discovery.Continuous {
		t.Fatal("expected continuous=true from file")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadProfileOverridesMissingFile(t *testing.T) {
	overrides, err := config.LoadProfileOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overrides != nil {
		t.Fatal("expected nil overrides for missing file")
	}
}

func TestLoadProfileOverridesParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := "rsi:\n  aggressive:\n    period: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	overrides, err := config.LoadProfileOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := overrides.For("rsi", "aggressive")
	if fields["period"] != 7 {
		t.Fatalf("period override = %v, want 7", fields["period"])
	}
}
