package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const envPrefix = "TRAFFIC_MONITOR_"

// Options are the command-line switches that are not part of Config.
type Options struct {
	ConfigPath  string
	EnvFile     string
	ShowVersion bool
}

// LoadDotEnv loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Resolve builds the configuration from defaults, an optional YAML file,
// TRAFFIC_MONITOR_* variables and finally the flags that were set explicitly.
func Resolve(args []string, stderr io.Writer, getenv func(string) string) (*Config, Options, error) {
	var (
		opts Options
		def  = Default()

		iface      string
		interval   float64
		alpha      float64
		noEMA      bool
		view       string
		output     string
		once       bool
		count      int
		asJSON     bool
		plain      bool
		dashboard  bool
		source     string
		procfsPath string
		barWidth   int
		logDir     string
		logLevel   string
		logFormat  string
	)

	fs := flag.NewFlagSet("traffic-monitor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "path to config.yaml")
	fs.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with TRAFFIC_MONITOR_* overrides")
	fs.BoolVar(&opts.ShowVersion, "version", false, "show version and exit")

	fs.StringVar(&iface, "iface", def.Interface, "interface name or 'all'")
	fs.Float64Var(&interval, "interval", def.IntervalSec, "refresh interval in seconds")
	fs.Float64Var(&alpha, "ema-alpha", def.EMA.Alpha, "EMA smoothing factor in (0,1)")
	fs.BoolVar(&noEMA, "no-ema", false, "disable EMA smoothing")
	fs.StringVar(&view, "view", def.View, "display mode: raw, ema or both")
	fs.StringVar(&output, "output", def.Output, "output: ansi, plain, json or dashboard")
	fs.BoolVar(&once, "once", false, "run once and exit")
	fs.IntVar(&count, "count", 0, "number of iterations (0 = forever)")
	fs.BoolVar(&asJSON, "json", false, "JSON output")
	fs.BoolVar(&plain, "plain", false, "plain text output")
	fs.BoolVar(&dashboard, "dashboard", false, "full-screen dashboard output")
	fs.StringVar(&source, "source", def.Source, "counter source: psutil or procfs")
	fs.StringVar(&procfsPath, "procfs-path", "/proc/net/dev", "net dev file used by the procfs source")
	fs.IntVar(&barWidth, "bar-width", def.BarWidth, "traffic bar width in characters")
	fs.StringVar(&logDir, "log-dir", "", "directory for NDJSON event logs (disabled when empty)")
	fs.StringVar(&logLevel, "log-level", def.Log.Level, "diagnostic log level")
	fs.StringVar(&logFormat, "log-format", def.Log.Format, "diagnostic log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}
	if opts.ShowVersion {
		return nil, opts, nil
	}

	cfg := Default()
	if opts.ConfigPath != "" {
		if err := LoadFile(cfg, opts.ConfigPath); err != nil {
			return nil, opts, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, opts, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "iface":
			cfg.Interface = iface
		case "interval":
			cfg.IntervalSec = interval
		case "ema-alpha":
			cfg.EMA.Alpha = alpha
		case "no-ema":
			cfg.EMA.Enabled = !noEMA
		case "view":
			cfg.View = view
		case "output":
			cfg.Output = output
		case "once":
			cfg.Once = once
		case "count":
			cfg.Count = count
		case "source":
			cfg.Source = source
		case "procfs-path":
			cfg.ProcfsPath = procfsPath
		case "bar-width":
			cfg.BarWidth = barWidth
		case "log-dir":
			cfg.Log.Dir = logDir
		case "log-level":
			cfg.Log.Level = logLevel
		case "log-format":
			cfg.Log.Format = logFormat
		}
	})

	// shorthand switches win over --output
	switch {
	case asJSON:
		cfg.Output = OutputJSON
	case plain:
		cfg.Output = OutputPlain
	case dashboard:
		cfg.Output = OutputDashboard
	}

	if err := cfg.Finalize(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	get := func(key string) string {
		return getenv(envPrefix + key)
	}

	if v := get("INTERFACE"); v != "" {
		cfg.Interface = v
	}
	if v := get("INTERVAL"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sINTERVAL: %w", envPrefix, err)
		}
		cfg.IntervalSec = f
	}
	if v := get("EMA_ALPHA"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sEMA_ALPHA: %w", envPrefix, err)
		}
		cfg.EMA.Alpha = f
	}
	if v := get("VIEW"); v != "" {
		cfg.View = v
	}
	if v := get("OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := get("SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := get("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := get("LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
