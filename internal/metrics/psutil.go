package metrics

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// PsutilSource reads per-NIC counters through gopsutil, which works on every
// platform gopsutil supports.
type PsutilSource struct {
	clock clock.Clock
}

func NewPsutilSource(clk clock.Clock) *PsutilSource {
	if clk == nil {
		clk = clock.New()
	}
	return &PsutilSource{clock: clk}
}

func (s *PsutilSource) Read(ctx context.Context, iface string) (CounterSnapshot, error) {
	now := s.clock.Now()

	counters, err := s.load(ctx)
	if err != nil {
		return CounterSnapshot{}, err
	}

	rx, tx, err := pick(counters, iface)
	if err != nil {
		return CounterSnapshot{}, fmt.Errorf("%s: %w", iface, err)
	}

	return CounterSnapshot{Timestamp: now, BytesIn: rx, BytesOut: tx}, nil
}

func (s *PsutilSource) Interfaces(ctx context.Context) ([]string, error) {
	counters, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return names(counters), nil
}

func (s *PsutilSource) load(ctx context.Context) ([]ifaceCounters, error) {
	stats, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("io counters: %w", err)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("no network interfaces found")
	}

	counters := make([]ifaceCounters, 0, len(stats))
	for _, st := range stats {
		counters = append(counters, ifaceCounters{
			name:    st.Name,
			rxBytes: st.BytesRecv,
			txBytes: st.BytesSent,
		})
	}
	return counters, nil
}

// HasInterface reports whether iface is known to src. AllInterfaces always is.
func HasInterface(ctx context.Context, src Source, iface string) (bool, error) {
	if iface == AllInterfaces {
		return true, nil
	}

	list, err := src.Interfaces(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range list {
		if name == iface {
			return true, nil
		}
	}
	return false, nil
}

// NewSource builds the counter source named by kind ("psutil" or "procfs").
func NewSource(kind, procfsPath string, clk clock.Clock) (Source, error) {
	switch kind {
	case "", "psutil":
		return NewPsutilSource(clk), nil
	case "procfs":
		return NewProcNetDevSource(procfsPath, clk), nil
	default:
		return nil, fmt.Errorf("unknown counter source %q", kind)
	}
}
