package alerts

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"traffic-monitor/internal/config"
	"traffic-monitor/internal/traffic"
)

// Engine raises alerts on sustained load, judged on the smoothed rate, and
// debounces the hook scripts they trigger.
type Engine struct {
	cfg       *config.Config
	clock     clock.Clock
	lastFired map[string]time.Time
	mu        sync.Mutex
}

func NewEngine(cfg *config.Config, clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	return &Engine{
		cfg:       cfg,
		clock:     clk,
		lastFired: make(map[string]time.Time),
	}
}

func (e *Engine) Detect(f traffic.Frame) []string {
	if !e.cfg.Alerts.Enabled {
		return nil
	}

	var alerts []string

	if over(f.EMA.In, e.cfg.Alerts.RxMbpsThreshold) {
		alerts = append(alerts, "rx")
	}

	if over(f.EMA.Out, e.cfg.Alerts.TxMbpsThreshold) {
		alerts = append(alerts, "tx")
	}

	return alerts
}

// ShouldExecuteScripts reports whether any of alertTypes is outside its
// debounce window, and restarts the window for those that are.
func (e *Engine) ShouldExecuteScripts(alertTypes []string) bool {
	if len(alertTypes) == 0 {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	debounceDur := e.cfg.ScriptDebounce()

	shouldExecute := false
	for _, alertType := range alertTypes {
		lastTime, exists := e.lastFired[alertType]
		if !exists || now.Sub(lastTime) >= debounceDur {
			shouldExecute = true
			e.lastFired[alertType] = now
		}
	}

	return shouldExecute
}

func over(bytesPerSec, mbpsThreshold float64) bool {
	return mbpsThreshold > 0 && traffic.Mbps(bytesPerSec) >= mbpsThreshold
}
