package sched

import (
	"os"
	"time"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// DefaultMaxTasks is the task table size used when none is configured.
const DefaultMaxTasks = 16

// Config mirrors config.yml.
type Config struct {
	TickHz        int          `yaml:"tick_hz"`        // 1000 (by default)
	TickWidth     int          `yaml:"tick_width"`     // 16 or 32
	StartTick     uint32       `yaml:"start_tick"`     // counter value at power-up
	MaxTasks      int          `yaml:"max_tasks"`      // task table capacity
	RunTicks      int          `yaml:"run_ticks"`      // ticks to simulate
	QueueCapacity int          `yaml:"queue_capacity"` // 3 (by default)
	Realtime      bool         `yaml:"realtime"`       // pace ticks with a wall-clock timer
	CSV           string       `yaml:"csv"`            // event log path, empty disables
	HTTPAddr      string       `yaml:"http_addr"`      // telemetry listener, realtime only
	Tasks         []TaskConfig `yaml:"tasks"`
}

// TaskConfig describes one task of the application task set.
type TaskConfig struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"` // button, transmitter, receiver, load
	Period      uint32 `yaml:"period"`
	Deadline    uint32 `yaml:"deadline"` // 0 means equal to period
	Cost        uint32 `yaml:"cost"`     // ticks of CPU per job (load)
	Pin         int    `yaml:"pin"`      // input pin (button)
	Tags        string `yaml:"tags"`     // edge tags, high then low (button)
	ToggleEvery uint32 `yaml:"toggle_every"`
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		TickHz:        1000,
		TickWidth:     32,
		MaxTasks:      DefaultMaxTasks,
		RunTicks:      1000,
		QueueCapacity: 3,
		Tasks: []TaskConfig{
			{Name: "BM1", Kind: "button", Period: 50, Pin: 0, Tags: "RF", ToggleEvery: 300},
			{Name: "BM2", Kind: "button", Period: 50, Pin: 1, Tags: "rf", ToggleEvery: 700},
			{Name: "PT", Kind: "transmitter", Period: 100},
			{Name: "UR", Kind: "receiver", Period: 20},
			{Name: "LS2", Kind: "load", Period: 100, Cost: 12},
			{Name: "LS1", Kind: "load", Period: 10, Cost: 5},
		},
	}
}

// Load reads YAML and overrides defaults; empty path or a missing file
// yields defaults only.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg.normalize(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.normalize(), nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg.normalize(), nil
}

// normalize applies sanity clamps.
func (cfg Config) normalize() Config {
	if cfg.TickHz <= 0 {
		cfg.TickHz = 1000
	}
	if cfg.TickWidth != 16 {
		cfg.TickWidth = 32
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = DefaultMaxTasks
	}
	if cfg.RunTicks < 0 {
		cfg.RunTicks = 0
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 3
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].Deadline == 0 || cfg.Tasks[i].Deadline > cfg.Tasks[i].Period {
			cfg.Tasks[i].Deadline = cfg.Tasks[i].Period
		}
	}
	return cfg
}

// TickInterval is the wall-clock length of one tick.
func (c Config) TickInterval() time.Duration {
	if c.TickHz <= 0 {
		return time.Millisecond
	}
	return time.Second / time.Duration(c.TickHz)
}
