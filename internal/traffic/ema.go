package traffic

import "fmt"

type EMA struct {
	alpha float64
	value float64
	init  bool
}

// NewEMA returns a filter with a fixed smoothing factor in (0, 1).
func NewEMA(alpha float64) (*EMA, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("ema alpha must be between 0 and 1 (exclusive), got %v", alpha)
	}
	return &EMA{alpha: alpha}, nil
}

// Update seeds the filter with the first value and damps every later one.
func (e *EMA) Update(x float64) float64 {
	if !e.init {
		e.value = x
		e.init = true
		return e.value
	}

	e.value = e.alpha*x + (1-e.alpha)*e.value
	return e.value
}

func (e *EMA) Value() float64 {
	return e.value
}

func (e *EMA) Initialized() bool {
	return e.init
}

func (e *EMA) Alpha() float64 {
	return e.alpha
}
