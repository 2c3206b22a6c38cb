package metrics

import (
	"context"
	"errors"
	"time"
)

// AllInterfaces selects the sum of every interface's counters.
const AllInterfaces = "all"

var ErrInterfaceNotFound = errors.New("interface not found")

// CounterSnapshot is one reading of cumulative received (In) and sent (Out)
// bytes. Counters are cumulative since the interface came up.
type CounterSnapshot struct {
	Timestamp time.Time
	BytesIn   uint64
	BytesOut  uint64
}

type Source interface {
	Read(ctx context.Context, iface string) (CounterSnapshot, error)
	Interfaces(ctx context.Context) ([]string, error)
}

type ifaceCounters struct {
	name    string
	rxBytes uint64
	txBytes uint64
}

// pick selects one interface, or sums all of them for AllInterfaces.
func pick(counters []ifaceCounters, iface string) (rx, tx uint64, err error) {
	if iface == AllInterfaces {
		for _, c := range counters {
			rx += c.rxBytes
			tx += c.txBytes
		}
		return rx, tx, nil
	}

	for _, c := range counters {
		if c.name == iface {
			return c.rxBytes, c.txBytes, nil
		}
	}
	return 0, 0, ErrInterfaceNotFound
}

func names(counters []ifaceCounters) []string {
	out := make([]string, 0, len(counters))
	for _, c := range counters {
		out = append(out, c.name)
	}
	return out
}
