// Package render turns completed ticks into terminal output. The variant is
// chosen once at startup.
package render

import (
	"fmt"
	"io"

	"traffic-monitor/internal/traffic"
)

type Renderer interface {
	Render(frame traffic.Frame) error
	Close() error
}

type Options struct {
	BarWidth int
}

func New(format string, w io.Writer, opts Options) (Renderer, error) {
	if opts.BarWidth <= 0 {
		opts.BarWidth = 50
	}

	switch format {
	case "ansi":
		return NewANSI(w, opts), nil
	case "plain":
		return NewPlain(w), nil
	case "json":
		return NewJSON(w), nil
	case "dashboard":
		return NewDashboard(opts)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
