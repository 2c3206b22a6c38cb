package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"traffic-monitor/internal/alerts"
	"traffic-monitor/internal/config"
	"traffic-monitor/internal/logging"
	"traffic-monitor/internal/scripts"
	"traffic-monitor/internal/spikes"
	"traffic-monitor/internal/traffic"
)

// eventHooks runs after every rendered tick: spike and alert detection,
// the NDJSON event log and alert scripts.
type eventHooks struct {
	ctx    context.Context
	cfg    *config.Config
	clock  clock.Clock
	log    *slog.Logger
	events *logging.Logger

	spikeDetector *spikes.Detector
	alertEngine   *alerts.Engine
	scriptRunner  *scripts.Runner

	lastWriteTime time.Time
	wg            sync.WaitGroup
}

func newEventHooks(ctx context.Context, cfg *config.Config, clk clock.Clock, log *slog.Logger) (*eventHooks, error) {
	h := &eventHooks{
		ctx:           ctx,
		cfg:           cfg,
		clock:         clk,
		log:           log,
		spikeDetector: spikes.NewDetector(cfg),
		alertEngine:   alerts.NewEngine(cfg, clk),
	}

	if cfg.Log.Dir != "" {
		events, err := logging.NewLogger(cfg.Log.Dir, clk)
		if err != nil {
			return nil, err
		}
		h.events = events
	}

	if cfg.Scripts.Enabled {
		h.scriptRunner = scripts.NewRunner(cfg)
	}

	return h, nil
}

func (h *eventHooks) OnFrame(frame traffic.Frame) {
	if spikeTypes := h.spikeDetector.Detect(frame); len(spikeTypes) > 0 {
		h.log.Warn("traffic spike", "iface", frame.Interface, "directions", spikeTypes, "seq", frame.Seq)
		if h.events != nil {
			if err := h.events.LogSpike(frame, spikeTypes); err != nil {
				h.log.Error("log spike error", "error", err)
			}
		}
	}

	if alertTypes := h.alertEngine.Detect(frame); len(alertTypes) > 0 {
		h.log.Warn("traffic alert", "iface", frame.Interface, "directions", alertTypes, "seq", frame.Seq)
		if h.events != nil {
			if err := h.events.LogAlert(frame, alertTypes); err != nil {
				h.log.Error("log alert error", "error", err)
			}
		}

		if h.scriptRunner != nil && h.alertEngine.ShouldExecuteScripts(alertTypes) {
			h.wg.Add(1)
			go func(types []string, f traffic.Frame) {
				defer h.wg.Done()
				if err := h.scriptRunner.Execute(h.ctx, types, f); err != nil {
					h.log.Error("script execution error", "error", err)
				}
			}(alertTypes, frame)
		}
	}

	if h.events == nil {
		return
	}
	now := h.clock.Now()
	if h.lastWriteTime.IsZero() || now.Sub(h.lastWriteTime) >= h.cfg.SampleLogInterval() {
		if err := h.events.LogSample(frame); err != nil {
			h.log.Error("log sample error", "error", err)
		}
		h.lastWriteTime = now
	}
}

// Close waits for running scripts and closes the event log.
func (h *eventHooks) Close() error {
	h.wg.Wait()
	if h.events != nil {
		return h.events.Close()
	}
	return nil
}
