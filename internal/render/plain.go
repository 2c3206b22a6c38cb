package render

import (
	"fmt"
	"io"

	"traffic-monitor/internal/traffic"
)

// Plain prints one line per tick.
type Plain struct {
	w io.Writer
}

func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w}
}

func (p *Plain) Render(f traffic.Frame) error {
	var out, in string
	switch f.View {
	case traffic.ViewRaw:
		out, in = FormatRate(f.Raw.Out), FormatRate(f.Raw.In)
	case traffic.ViewEMA:
		out, in = FormatRate(f.EMA.Out), FormatRate(f.EMA.In)
	default:
		out = fmt.Sprintf("%s (avg %s)", FormatRate(f.Raw.Out), FormatRate(f.EMA.Out))
		in = fmt.Sprintf("%s (avg %s)", FormatRate(f.Raw.In), FormatRate(f.EMA.In))
	}

	_, err := fmt.Fprintf(p.w, "[%s] OUT %s | IN %s | TOTAL %s/%s\n",
		f.Timestamp.Format("15:04:05"),
		out, in,
		FormatBytes(float64(f.Totals.Out)),
		FormatBytes(float64(f.Totals.In)),
	)
	return err
}

func (p *Plain) Close() error {
	return nil
}
