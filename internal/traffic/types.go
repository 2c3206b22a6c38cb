package traffic

import (
	"fmt"
	"strings"
	"time"
)

// RateSample holds throughput in bytes per second.
type RateSample struct {
	In  float64
	Out float64
}

// Totals accumulates per-tick deltas, not absolute counters.
type Totals struct {
	In  uint64
	Out uint64
}

type Delta struct {
	In  uint64
	Out uint64
}

// Event flags what a tick observed besides a plain rate update.
type Event uint8

const (
	EventBaseline Event = 1 << iota
	EventClockAnomaly
	EventResetIn
	EventResetOut
)

func (e Event) Has(flag Event) bool {
	return e&flag != 0
}

func (e Event) Strings() []string {
	var out []string
	if e.Has(EventBaseline) {
		out = append(out, "baseline")
	}
	if e.Has(EventClockAnomaly) {
		out = append(out, "clock_anomaly")
	}
	if e.Has(EventResetIn) {
		out = append(out, "reset_in")
	}
	if e.Has(EventResetOut) {
		out = append(out, "reset_out")
	}
	return out
}

func (e Event) String() string {
	return strings.Join(e.Strings(), ",")
}

type ViewMode string

const (
	ViewRaw  ViewMode = "raw"
	ViewEMA  ViewMode = "ema"
	ViewBoth ViewMode = "both"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch v := ViewMode(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewRaw, ViewEMA, ViewBoth:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view mode %q (want raw, ema or both)", s)
	}
}

// Result is what one Aggregator tick produces.
type Result struct {
	Raw     RateSample
	EMA     RateSample
	Totals  Totals
	Delta   Delta
	Elapsed time.Duration
	Events  Event
}

// Mbps converts bytes per second to megabits per second.
func Mbps(bytesPerSec float64) float64 {
	return bytesPerSec * 8 / 1e6
}
