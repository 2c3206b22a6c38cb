package traffic

import "math"

type Quantity int

const (
	In Quantity = iota
	Out
)

func (q Quantity) String() string {
	if q == Out {
		return "out"
	}
	return "in"
}

// ScaleState holds the session maxima used to size bars.
type ScaleState struct {
	MaxIn  float64
	MaxOut float64
}

// Max returns the running maximum for q.
func (s ScaleState) Max(q Quantity) float64 {
	if q == Out {
		return s.MaxOut
	}
	return s.MaxIn
}

// ScaleTracker keeps the largest rate seen per quantity for the whole session.
// It never decays, so one burst coarsens every later bar.
type ScaleTracker struct {
	state ScaleState
}

func NewScaleTracker() *ScaleTracker {
	return &ScaleTracker{}
}

// Observe records v and returns the current maximum for q. Negative and NaN
// values are ignored.
func (t *ScaleTracker) Observe(q Quantity, v float64) float64 {
	m := &t.state.MaxIn
	if q == Out {
		m = &t.state.MaxOut
	}
	if v > *m {
		*m = v
	}
	return *m
}

// ObserveRates records both the raw and the smoothed rate, whatever the view.
// BarSample picks the one that draws the bar.
func (t *ScaleTracker) ObserveRates(raw, ema RateSample) ScaleState {
	t.Observe(In, raw.In)
	t.Observe(Out, raw.Out)
	t.Observe(In, ema.In)
	t.Observe(Out, ema.Out)
	return t.state
}

func (t *ScaleTracker) State() ScaleState {
	return t.state
}

// BarLength maps value onto [0, width] relative to peak.
func BarLength(value, peak float64, width int) int {
	if width <= 0 || !(peak > 0) || !(value > 0) {
		return 0
	}
	n := math.Round(value / peak * float64(width))
	if n > float64(width) {
		return width
	}
	return int(n)
}

// BarSample picks the rate that drives the bars for a view: raw for the raw
// view, smoothed otherwise.
func BarSample(view ViewMode, raw, ema RateSample) RateSample {
	if view == ViewRaw {
		return raw
	}
	return ema
}
