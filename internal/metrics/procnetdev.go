package metrics

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
)

const DefaultProcNetDev = "/proc/net/dev"

// ProcNetDevSource reads counters straight from a /proc/net/dev formatted file.
type ProcNetDevSource struct {
	path  string
	clock clock.Clock
}

func NewProcNetDevSource(path string, clk clock.Clock) *ProcNetDevSource {
	if path == "" {
		path = DefaultProcNetDev
	}
	if clk == nil {
		clk = clock.New()
	}
	return &ProcNetDevSource{path: path, clock: clk}
}

func (s *ProcNetDevSource) Read(ctx context.Context, iface string) (CounterSnapshot, error) {
	now := s.clock.Now()

	counters, err := s.load()
	if err != nil {
		return CounterSnapshot{}, err
	}

	rx, tx, err := pick(counters, iface)
	if err != nil {
		return CounterSnapshot{}, fmt.Errorf("%s: %w", iface, err)
	}

	return CounterSnapshot{Timestamp: now, BytesIn: rx, BytesOut: tx}, nil
}

func (s *ProcNetDevSource) Interfaces(ctx context.Context) ([]string, error) {
	counters, err := s.load()
	if err != nil {
		return nil, err
	}
	return names(counters), nil
}

func (s *ProcNetDevSource) load() ([]ifaceCounters, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer file.Close()

	return parseNetDev(file)
}

// parseNetDev understands both "eth0: 123 ..." and "eth0:123 ..." layouts.
// Receive bytes are the first field after the name, transmit bytes the ninth.
func parseNetDev(r io.Reader) ([]ifaceCounters, error) {
	scanner := bufio.NewScanner(r)

	var counters []ifaceCounters
	for scanner.Scan() {
		line := scanner.Text()

		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.Contains(name, "|") {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) < 9 {
			continue
		}

		rxBytes, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rx bytes for %s: %w", name, err)
		}
		txBytes, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tx bytes for %s: %w", name, err)
		}

		counters = append(counters, ifaceCounters{name: name, rxBytes: rxBytes, txBytes: txBytes})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan net dev: %w", err)
	}
	return counters, nil
}
