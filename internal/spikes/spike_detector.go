package spikes

import (
	"traffic-monitor/internal/config"
	"traffic-monitor/internal/traffic"
)

// Detector flags bursts: a single raw sample over an absolute Mbps threshold,
// or raw running ahead of the smoothed rate by a relative margin.
type Detector struct {
	cfg *config.Config
}

func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns the directions ("rx", "tx") that spiked in f. Baseline and
// clock-anomaly ticks carry no fresh rate and never spike.
func (d *Detector) Detect(f traffic.Frame) []string {
	if !d.cfg.Spikes.Enabled {
		return nil
	}
	if f.Events.Has(traffic.EventBaseline) || f.Events.Has(traffic.EventClockAnomaly) {
		return nil
	}

	var spikes []string

	if d.detectSpike(f.Raw.In, f.EMA.In, d.cfg.Spikes.RxMbpsThreshold) {
		spikes = append(spikes, "rx")
	}

	if d.detectSpike(f.Raw.Out, f.EMA.Out, d.cfg.Spikes.TxMbpsThreshold) {
		spikes = append(spikes, "tx")
	}

	return spikes
}

func (d *Detector) detectSpike(raw, ema, mbpsThreshold float64) bool {
	if mbpsThreshold > 0 && traffic.Mbps(raw) >= mbpsThreshold {
		return true
	}

	relative := d.cfg.Spikes.RelativeThreshold
	if ema > 0 && relative > 0 {
		change := ((raw - ema) / ema) * 100.0
		if change >= relative {
			return true
		}
	}

	return false
}
