package sampler

import (
	"errors"
	"fmt"

	"traffic-monitor/internal/metrics"
)

// CollectorError is a failed counter read. It ends the run.
type CollectorError struct {
	Interface string
	Tick      int
	Err       error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("read counters for %s (tick %d): %v", e.Interface, e.Tick, e.Err)
}

func (e *CollectorError) Unwrap() error {
	return e.Err
}

// IsInterfaceGone reports whether err means the monitored interface vanished.
func IsInterfaceGone(err error) bool {
	return errors.Is(err, metrics.ErrInterfaceNotFound)
}
