package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 1000      10    0    0    0     0          0         0     1000      10    0    0    0     0       0          0
  eth0: 5000      20    0    0    0     0          0         0     3000      30    0    0    0     0       0          0
`

func fixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dev")
	require.NoError(t, os.WriteFile(path, []byte(netDev), 0o644))
	return path
}

func noEnv(string) string { return "" }

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, noEnv)
	return code, stdout.String(), stderr.String()
}

func TestRun_PlainCount(t *testing.T) {
	code, out, errOut := runArgs(t,
		"--source", "procfs", "--procfs-path", fixture(t),
		"--iface", "eth0", "--count", "3", "--interval", "0.1", "--plain", "--log-level", "error")

	require.Equal(t, exitOK, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, "OUT 0.0 B/s")
		assert.Contains(t, line, "TOTAL 0.0 B/0.0 B")
	}
	assert.NotContains(t, out, "Stopped.")
}

func TestRun_JSONOnce(t *testing.T) {
	code, out, errOut := runArgs(t,
		"--source", "procfs", "--procfs-path", fixture(t),
		"--once", "--json", "--log-level", "error")

	require.Equal(t, exitOK, code, errOut)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
	assert.Equal(t, "all", rec["iface"])
	assert.Equal(t, 1.0, rec["seq"])
	assert.Equal(t, []any{"baseline"}, rec["events"])
	assert.Equal(t, true, rec["ema_enabled"])
	assert.Equal(t, 0.2, rec["ema_alpha"])
}

func TestRun_JSONNoEMA(t *testing.T) {
	code, out, errOut := runArgs(t,
		"--source", "procfs", "--procfs-path", fixture(t),
		"--once", "--json", "--no-ema", "--log-level", "error")

	require.Equal(t, exitOK, code, errOut)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
	assert.Equal(t, false, rec["ema_enabled"])
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{
		"--source", "procfs", "--procfs-path", fixture(t),
		"--plain", "--log-level", "error",
	}, &stdout, &stderr, noEnv)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Stopped.")
}

func TestRun_UnknownInterface(t *testing.T) {
	code, _, errOut := runArgs(t,
		"--source", "procfs", "--procfs-path", fixture(t), "--iface", "wlan9", "--once")

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, errOut, "wlan9")
	assert.Contains(t, errOut, "eth0")
}

func TestRun_InvalidConfig(t *testing.T) {
	for _, args := range [][]string{
		{"--ema-alpha", "1"},
		{"--ema-alpha", "0"},
		{"--view", "fancy"},
		{"--log-level", "loud"},
		{"--bogus"},
		{"--interval", "1e12"},
	} {
		code, _, _ := runArgs(t, append([]string{"--source", "procfs", "--procfs-path", fixture(t)}, args...)...)
		assert.Equal(t, exitConfig, code, args)
	}
}

func TestRun_CollectorFailure(t *testing.T) {
	code, _, _ := runArgs(t,
		"--source", "procfs", "--procfs-path", filepath.Join(t.TempDir(), "missing"), "--once")
	assert.Equal(t, exitFailure, code)
}

func TestRun_VersionAndHelp(t *testing.T) {
	code, out, _ := runArgs(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "traffic-monitor v1.0.0\n", out)

	code, _, errOut := runArgs(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "-iface")
}

func TestRun_EventLog(t *testing.T) {
	dir := t.TempDir()
	code, _, errOut := runArgs(t,
		"--source", "procfs", "--procfs-path", fixture(t),
		"--once", "--plain", "--log-dir", dir, "--log-level", "error")
	require.Equal(t, exitOK, code, errOut)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "traffic-"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"sample"`)
}

func TestEnvFileArg(t *testing.T) {
	assert.Equal(t, "", envFileArg([]string{"--iface", "eth0"}))
	assert.Equal(t, "a.env", envFileArg([]string{"--env-file", "a.env"}))
	assert.Equal(t, "b.env", envFileArg([]string{"-env-file=b.env"}))
	assert.Equal(t, "", envFileArg([]string{"env-file", "x"}))
}
