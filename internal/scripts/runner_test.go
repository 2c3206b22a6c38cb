package scripts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-monitor/internal/config"
	"traffic-monitor/internal/traffic"
)

func testFrame() traffic.Frame {
	return traffic.Frame{
		Interface: "eth0",
		Timestamp: time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC),
		Result: traffic.Result{
			Raw:    traffic.RateSample{In: 2e6, Out: 1e6},
			EMA:    traffic.RateSample{In: 1.5e6, Out: 5e5},
			Totals: traffic.Totals{In: 42, Out: 7},
		},
	}
}

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/bin/bash"); err != nil {
		t.Skip("/bin/bash not available")
	}
}

func TestBuildEnv(t *testing.T) {
	env := BuildEnv([]string{"rx"}, testFrame())

	assert.Equal(t, "2026-05-20T10:00:00Z", env["TRAFFIC_TIMESTAMP"])
	assert.Equal(t, "alert", env["TRAFFIC_EVENT_TYPE"])
	assert.Equal(t, "rx", env["TRAFFIC_EVENT_METRIC"])
	assert.Equal(t, "eth0", env["TRAFFIC_INTERFACE"])
	assert.Equal(t, "2000000.00", env["TRAFFIC_RX_BPS"])
	assert.Equal(t, "12.00", env["TRAFFIC_RX_MBPS"])
	assert.Equal(t, "4.00", env["TRAFFIC_TX_MBPS"])
	assert.Equal(t, "42", env["TRAFFIC_TOTAL_RX_BYTES"])

	assert.Equal(t, "multi", BuildEnv([]string{"rx", "tx"}, testFrame())["TRAFFIC_EVENT_METRIC"])
}

func TestExecute_RunsExecutableScripts(t *testing.T) {
	requireBash(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	hook := "#!/bin/bash\necho \"$TRAFFIC_INTERFACE $TRAFFIC_EVENT_METRIC\" >> " + out + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sh"), []byte(hook), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.sh"), []byte(hook), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte(hook), 0o755))

	cfg := config.Default()
	cfg.Scripts.Dir = dir
	cfg.Scripts.EnvFile = filepath.Join(dir, "alert.env")

	require.NoError(t, NewRunner(cfg).Execute(context.Background(), []string{"tx"}, testFrame()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "eth0 tx\n", string(data))

	envFile, err := os.ReadFile(cfg.Scripts.EnvFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(envFile), "TRAFFIC_EVENT_METRIC=tx\n"))
	assert.Contains(t, string(envFile), "TRAFFIC_INTERFACE=eth0\n")
}

func TestExecute_ScriptFailure(t *testing.T) {
	requireBash(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fail.sh"), []byte("exit 3\n"), 0o755))

	cfg := config.Default()
	cfg.Scripts.Dir = dir

	err := NewRunner(cfg).Execute(context.Background(), []string{"rx"}, testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestExecute_MissingDir(t *testing.T) {
	cfg := config.Default()
	cfg.Scripts.Dir = filepath.Join(t.TempDir(), "nope")

	err := NewRunner(cfg).Execute(context.Background(), []string{"rx"}, testFrame())
	assert.Error(t, err)
}
