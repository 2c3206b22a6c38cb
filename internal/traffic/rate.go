package traffic

import (
	"traffic-monitor/internal/metrics"
)

// RateCalculator turns consecutive counter snapshots into rates. The only
// state it carries is the previous snapshot and the last rate it produced.
type RateCalculator struct {
	prev     metrics.CounterSnapshot
	last     RateSample
	baseline bool
}

// Next compares cur against the stored snapshot.
//
// The first call only records a baseline. A non-positive elapsed time keeps
// the previous snapshot and returns the previous rate with a zero delta, so
// the bytes are accounted for on the next valid tick. A counter that went
// backwards is rebaselined: rate 0 and delta 0 for that counter.
func (c *RateCalculator) Next(cur metrics.CounterSnapshot) (RateSample, Delta, Event) {
	if !c.baseline {
		c.prev = cur
		c.baseline = true
		c.last = RateSample{}
		return RateSample{}, Delta{}, EventBaseline
	}

	elapsed := cur.Timestamp.Sub(c.prev.Timestamp).Seconds()
	if elapsed <= 0 {
		return c.last, Delta{}, EventClockAnomaly
	}

	var (
		rate   RateSample
		delta  Delta
		events Event
	)

	if cur.BytesIn < c.prev.BytesIn {
		events |= EventResetIn
	} else {
		delta.In = cur.BytesIn - c.prev.BytesIn
		rate.In = float64(delta.In) / elapsed
	}

	if cur.BytesOut < c.prev.BytesOut {
		events |= EventResetOut
	} else {
		delta.Out = cur.BytesOut - c.prev.BytesOut
		rate.Out = float64(delta.Out) / elapsed
	}

	c.prev = cur
	c.last = rate
	return rate, delta, events
}

// Previous returns the stored snapshot and whether a baseline exists.
func (c *RateCalculator) Previous() (metrics.CounterSnapshot, bool) {
	return c.prev, c.baseline
}
