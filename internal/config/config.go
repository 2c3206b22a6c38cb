package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"traffic-monitor/internal/traffic"
)

// MinInterval is the shortest tick the monitor will run at. Shorter requests
// are raised to it silently.
const MinInterval = 100 * time.Millisecond

// maxIntervalSec is the longest interval a time.Duration can hold.
const maxIntervalSec = math.MaxInt64 / float64(time.Second)

var (
	ErrInvalid          = errors.New("invalid config")
	ErrUnknownInterface = errors.New("unknown interface")
)

const (
	OutputANSI      = "ansi"
	OutputPlain     = "plain"
	OutputJSON      = "json"
	OutputDashboard = "dashboard"

	SourcePsutil = "psutil"
	SourceProcfs = "procfs"
)

type Config struct {
	Interface   string  `yaml:"interface"`
	IntervalSec float64 `yaml:"interval_sec"`
	View        string  `yaml:"view"`
	Output      string  `yaml:"output"`
	Count       int     `yaml:"count"`
	Once        bool    `yaml:"once"`
	BarWidth    int     `yaml:"bar_width"`
	Source      string  `yaml:"source"`
	ProcfsPath  string  `yaml:"procfs_path"`
	EMA         EMA     `yaml:"ema"`
	Log         Log     `yaml:"log"`
	Spikes      Spikes  `yaml:"spikes"`
	Alerts      Alerts  `yaml:"alerts"`
	Scripts     Scripts `yaml:"scripts"`
}

type EMA struct {
	Enabled bool    `yaml:"enabled"`
	Alpha   float64 `yaml:"alpha"`
}

type Log struct {
	Level             string `yaml:"level"`
	Format            string `yaml:"format"`
	Dir               string `yaml:"dir"`
	RetentionDays     int    `yaml:"retention_days"`
	SampleIntervalSec int    `yaml:"sample_interval_sec"`
}

type Spikes struct {
	Enabled           bool    `yaml:"enabled"`
	RxMbpsThreshold   float64 `yaml:"rx_mbps_threshold"`
	TxMbpsThreshold   float64 `yaml:"tx_mbps_threshold"`
	RelativeThreshold float64 `yaml:"relative_threshold"`
}

type Alerts struct {
	Enabled         bool    `yaml:"enabled"`
	RxMbpsThreshold float64 `yaml:"rx_mbps_threshold"`
	TxMbpsThreshold float64 `yaml:"tx_mbps_threshold"`
}

type Scripts struct {
	Enabled     bool   `yaml:"enabled"`
	Dir         string `yaml:"dir"`
	EnvFile     string `yaml:"env_file"`
	DebounceSec int    `yaml:"debounce_sec"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Interface:   "all",
		IntervalSec: 1,
		View:        string(traffic.ViewBoth),
		Output:      OutputANSI,
		BarWidth:    50,
		Source:      SourcePsutil,
		EMA:         EMA{Enabled: true, Alpha: 0.2},
		Log: Log{
			Level:             "info",
			Format:            "text",
			RetentionDays:     30,
			SampleIntervalSec: 60,
		},
		Scripts: Scripts{DebounceSec: 60, TimeoutSec: 30},
	}
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Finalize applies defaults and validates. Every resolution path ends here.
func (c *Config) Finalize() error {
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Interface == "" {
		c.Interface = "all"
	}
	if !(c.IntervalSec >= MinInterval.Seconds()) {
		c.IntervalSec = MinInterval.Seconds()
	}
	if c.View == "" {
		c.View = string(traffic.ViewBoth)
	}
	if c.Output == "" {
		c.Output = OutputANSI
	}
	if c.Once {
		c.Count = 1
	}
	if c.BarWidth <= 0 {
		c.BarWidth = 50
	}
	if c.Source == "" {
		c.Source = SourcePsutil
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.RetentionDays <= 0 {
		c.Log.RetentionDays = 30
	}
	if c.Log.SampleIntervalSec <= 0 {
		c.Log.SampleIntervalSec = 60
	}
	if c.Scripts.DebounceSec <= 0 {
		c.Scripts.DebounceSec = 60
	}
	if c.Scripts.TimeoutSec <= 0 {
		c.Scripts.TimeoutSec = 30
	}
}

func (c *Config) validate() error {
	if c.IntervalSec >= maxIntervalSec {
		return fmt.Errorf("interval_sec must be below %.0f, got %v", maxIntervalSec, c.IntervalSec)
	}
	if !(c.EMA.Alpha > 0 && c.EMA.Alpha < 1) {
		return fmt.Errorf("ema.alpha must be between 0 and 1 (exclusive), got %v", c.EMA.Alpha)
	}
	if _, err := traffic.ParseViewMode(c.View); err != nil {
		return err
	}
	switch c.Output {
	case OutputANSI, OutputPlain, OutputJSON, OutputDashboard:
	default:
		return fmt.Errorf("unknown output %q", c.Output)
	}
	switch c.Source {
	case SourcePsutil, SourceProcfs:
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.Count < 0 {
		return fmt.Errorf("count cannot be negative")
	}
	if strings.TrimSpace(c.Interface) == "" {
		return fmt.Errorf("interface cannot be empty")
	}
	if c.Scripts.Enabled && c.Scripts.Dir == "" {
		return fmt.Errorf("scripts.dir is required when scripts are enabled")
	}
	return nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSec * float64(time.Second))
}

func (c *Config) ViewMode() traffic.ViewMode {
	v, _ := traffic.ParseViewMode(c.View)
	return v
}

// IterationLimit returns the number of ticks to run; 0 means forever.
func (c *Config) IterationLimit() int {
	if c.Once {
		return 1
	}
	return c.Count
}

func (c *Config) SampleLogInterval() time.Duration {
	return time.Duration(c.Log.SampleIntervalSec) * time.Second
}

func (c *Config) ScriptDebounce() time.Duration {
	return time.Duration(c.Scripts.DebounceSec) * time.Second
}

func (c *Config) ScriptTimeout() time.Duration {
	return time.Duration(c.Scripts.TimeoutSec) * time.Second
}
