package sched

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if cfg != defaultConfig() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, defaultConfig())
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	if cfg := Load(""); cfg != defaultConfig() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "tick_ms: 5\ntelemetry: false\ntrace_depth: 32\nmanual_tick: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := Load(path)
	if cfg.TickMS != 5 {
		t.Errorf("TickMS = %d, want 5", cfg.TickMS)
	}
	if cfg.Telemetry {
		t.Errorf("Telemetry = true, want false")
	}
	if cfg.TraceDepth != 32 {
		t.Errorf("TraceDepth = %d, want 32", cfg.TraceDepth)
	}
	if !cfg.ManualTick {
		t.Errorf("ManualTick = false, want true")
	}
}

func TestLoadClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "tick_ms: -3\ntrace_depth: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := Load(path)
	if cfg.TickMS != 1 {
		t.Errorf("TickMS = %d, want clamp to 1", cfg.TickMS)
	}
	if cfg.TraceDepth != defaultTraceDepth {
		t.Errorf("TraceDepth = %d, want clamp to %d", cfg.TraceDepth, defaultTraceDepth)
	}
}
