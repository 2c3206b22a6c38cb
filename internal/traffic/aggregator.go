package traffic

import (
	"traffic-monitor/internal/metrics"
)

// Aggregator owns the running totals and the latest raw and smoothed rates.
// It is not safe for concurrent use; the sampling loop is its only caller.
type Aggregator struct {
	rate      RateCalculator
	inEMA     *EMA
	outEMA    *EMA
	smoothing bool

	totals  Totals
	lastRaw RateSample
	lastEMA RateSample
	ticks   int
}

// NewAggregator validates alpha even when smoothing is off so that a bad
// value is reported before sampling starts.
func NewAggregator(alpha float64, smoothing bool) (*Aggregator, error) {
	inEMA, err := NewEMA(alpha)
	if err != nil {
		return nil, err
	}
	outEMA, err := NewEMA(alpha)
	if err != nil {
		return nil, err
	}

	return &Aggregator{
		inEMA:     inEMA,
		outEMA:    outEMA,
		smoothing: smoothing,
	}, nil
}

func (a *Aggregator) Tick(s metrics.CounterSnapshot) Result {
	a.ticks++

	prev, hadPrev := a.rate.Previous()
	raw, delta, events := a.rate.Next(s)

	res := Result{Events: events}
	if hadPrev {
		res.Elapsed = s.Timestamp.Sub(prev.Timestamp)
	}

	switch {
	case events.Has(EventBaseline):
		a.lastRaw = RateSample{}
		a.lastEMA = RateSample{}
	case events.Has(EventClockAnomaly):
		// previous raw and smoothed rates stay as they are
	default:
		a.totals.In += delta.In
		a.totals.Out += delta.Out
		a.lastRaw = raw
		a.lastEMA = a.smooth(raw)
	}

	res.Raw = a.lastRaw
	res.EMA = a.lastEMA
	res.Totals = a.totals
	res.Delta = delta
	return res
}

func (a *Aggregator) smooth(raw RateSample) RateSample {
	if !a.smoothing {
		return raw
	}
	return RateSample{
		In:  a.inEMA.Update(raw.In),
		Out: a.outEMA.Update(raw.Out),
	}
}

func (a *Aggregator) Totals() Totals {
	return a.totals
}

func (a *Aggregator) Ticks() int {
	return a.ticks
}

func (a *Aggregator) Smoothing() bool {
	return a.smoothing
}

func (a *Aggregator) Alpha() float64 {
	return a.inEMA.Alpha()
}
