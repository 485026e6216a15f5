package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

const defaultTraceDepth = 256

// Config mirrors config.yml.
type Config struct {
	TickMS     int  `yaml:"tick_ms"`     // tick period in milliseconds, 1 (by default)
	Telemetry  bool `yaml:"telemetry"`   // per-task runtime accounting, on (by default)
	TraceDepth int  `yaml:"trace_depth"` // retained trace events, 256 (by default)
	ManualTick bool `yaml:"manual_tick"` // no clock goroutine; host injects Tick() calls
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		TickMS:     1,
		Telemetry:  true,
		TraceDepth: defaultTraceDepth,
		ManualTick: false,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = 1
	}
	if cfg.TraceDepth <= 0 {
		cfg.TraceDepth = defaultTraceDepth
	}

	return cfg
}
