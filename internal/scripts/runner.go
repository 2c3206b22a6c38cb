package scripts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"traffic-monitor/internal/config"
	"traffic-monitor/internal/traffic"
)

// Runner executes the *.sh hooks in the configured directory when an alert
// fires, passing the tick as TRAFFIC_* environment variables.
type Runner struct {
	cfg *config.Config
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

func (r *Runner) Execute(ctx context.Context, alertTypes []string, f traffic.Frame) error {
	env := BuildEnv(alertTypes, f)

	if r.cfg.Scripts.EnvFile != "" {
		if err := writeEnvFile(r.cfg.Scripts.EnvFile, env); err != nil {
			return fmt.Errorf("failed to write env file: %w", err)
		}
	}

	scripts, err := r.findScripts()
	if err != nil {
		return fmt.Errorf("failed to find scripts: %w", err)
	}

	for _, script := range scripts {
		if err := r.executeScript(ctx, script, env); err != nil {
			return fmt.Errorf("script %s failed: %w", script, err)
		}
	}

	return nil
}

func writeEnvFile(path string, env map[string]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, key := range sortedKeys(env) {
		if _, err := fmt.Fprintf(file, "%s=%s\n", key, env[key]); err != nil {
			return err
		}
	}

	return nil
}

func BuildEnv(alertTypes []string, f traffic.Frame) map[string]string {
	metric := "multi"
	if len(alertTypes) == 1 {
		metric = alertTypes[0]
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	return map[string]string{
		"TRAFFIC_TIMESTAMP":      f.Timestamp.UTC().Format(time.RFC3339),
		"TRAFFIC_EVENT_TYPE":     "alert",
		"TRAFFIC_EVENT_METRIC":   metric,
		"TRAFFIC_INTERFACE":      f.Interface,
		"TRAFFIC_RX_BPS":         num(f.Raw.In),
		"TRAFFIC_TX_BPS":         num(f.Raw.Out),
		"TRAFFIC_RX_EMA_BPS":     num(f.EMA.In),
		"TRAFFIC_TX_EMA_BPS":     num(f.EMA.Out),
		"TRAFFIC_RX_MBPS":        num(traffic.Mbps(f.EMA.In)),
		"TRAFFIC_TX_MBPS":        num(traffic.Mbps(f.EMA.Out)),
		"TRAFFIC_TOTAL_RX_BYTES": strconv.FormatUint(f.Totals.In, 10),
		"TRAFFIC_TOTAL_TX_BYTES": strconv.FormatUint(f.Totals.Out, 10),
	}
}

func (r *Runner) findScripts() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.Scripts.Dir)
	if err != nil {
		return nil, err
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), ".sh") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.Mode()&0111 == 0 {
			continue
		}

		scripts = append(scripts, filepath.Join(r.cfg.Scripts.Dir, entry.Name()))
	}

	return scripts, nil
}

func (r *Runner) executeScript(ctx context.Context, scriptPath string, env map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ScriptTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/bash", scriptPath)
	cmd.Env = os.Environ()

	for _, key := range sortedKeys(env) {
		cmd.Env = append(cmd.Env, key+"="+env[key])
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("exit code %d", exitErr.ExitCode())
		}
		return err
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
