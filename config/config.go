// Package config loads the tunables the demo CLI (cmd/flowrtdemo) uses to
// construct schedulers and channels, in the style recera-vango loads its
// own YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig governs fiber.Scheduler construction.
type SchedulerConfig struct {
	// StackSizeBytes is passed through to spawned fibers for interface
	// parity with callers that pass a stack size hint; it does not bound
	// anything on this backend.
	StackSizeBytes int `yaml:"stack_size_bytes"`
}

// ChannelConfig governs chanx.Channel construction.
type ChannelConfig struct {
	DefaultCapacity int `yaml:"default_capacity"`
}

// Config is the top-level document loaded from YAML.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Channel   ChannelConfig   `yaml:"channel"`
}

// Default returns the configuration flowrtdemo uses when no --config flag
// is given.
func Default() Config {
	return Config{
		Scheduler: SchedulerConfig{StackSizeBytes: 4 << 20},
		Channel:   ChannelConfig{DefaultCapacity: 0},
	}
}

// LoadFile reads and parses a YAML config file, falling back to Default for
// any field the document omits.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("flowrt/config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("flowrt/config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
