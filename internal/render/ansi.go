package render

import (
	"fmt"
	"io"
	"strings"

	"traffic-monitor/internal/traffic"
)

const (
	clearScreen = "\033[2J\033[H"
	reset       = "\033[0m"
	bold        = "\033[1m"
	blueBold    = "\033[1;34m"
	grey        = "\033[90m"
	green       = "\033[32m"
	cyan        = "\033[36m"

	screenWidth = 60
)

// ANSI redraws a full screen per tick using escape sequences.
type ANSI struct {
	w        io.Writer
	barWidth int
}

func NewANSI(w io.Writer, opts Options) *ANSI {
	return &ANSI{w: w, barWidth: opts.BarWidth}
}

func (a *ANSI) Render(f traffic.Frame) error {
	var b strings.Builder

	b.WriteString(clearScreen)

	rule := strings.Repeat("=", screenWidth)
	title := fmt.Sprintf("NETWORK TRAFFIC [%s] (%s)", f.Interface, strings.ToUpper(string(f.View)))
	fmt.Fprintf(&b, "%s%s\n%s\n%s%s\n\n", blueBold, rule, center(title, screenWidth), rule, reset)

	fmt.Fprintf(&b, "%sCurrent Speed:%s\n", bold, reset)
	switch f.View {
	case traffic.ViewBoth:
		fmt.Fprintf(&b, "  OUT: raw %s%10s%s | avg %s%10s%s\n",
			grey, FormatRate(f.Raw.Out), reset, green, FormatRate(f.EMA.Out), reset)
		fmt.Fprintf(&b, "  IN:  raw %s%10s%s | avg %s%10s%s\n",
			grey, FormatRate(f.Raw.In), reset, cyan, FormatRate(f.EMA.In), reset)
	default:
		s := traffic.BarSample(f.View, f.Raw, f.EMA)
		fmt.Fprintf(&b, "  OUT: %s%12s%s\n", green, FormatRate(s.Out), reset)
		fmt.Fprintf(&b, "  IN:  %s%12s%s\n", cyan, FormatRate(s.In), reset)
	}

	bars := traffic.BarSample(f.View, f.Raw, f.EMA)
	fmt.Fprintf(&b, "\n%sTraffic Level:%s\n", bold, reset)
	fmt.Fprintf(&b, "  OUT [%s%s%s]\n", green,
		Bar(traffic.BarLength(bars.Out, f.Scale.MaxOut, a.barWidth), a.barWidth), reset)
	fmt.Fprintf(&b, "  IN  [%s%s%s]\n", cyan,
		Bar(traffic.BarLength(bars.In, f.Scale.MaxIn, a.barWidth), a.barWidth), reset)

	fmt.Fprintf(&b, "\n%sTotal since start:%s\n", bold, reset)
	fmt.Fprintf(&b, "  Sent: %s\n", FormatBytes(float64(f.Totals.Out)))
	fmt.Fprintf(&b, "  Recv: %s\n", FormatBytes(float64(f.Totals.In)))
	fmt.Fprintf(&b, "  Time: %d sec\n", int(f.Uptime.Seconds()))

	fmt.Fprintf(&b, "\n%s%s\n", grey, strings.Repeat("-", screenWidth))
	fmt.Fprintf(&b, "Ctrl+C to exit | %s%s\n", f.Timestamp.Format("15:04:05"), reset)

	_, err := io.WriteString(a.w, b.String())
	return err
}

func (a *ANSI) Close() error {
	_, err := io.WriteString(a.w, reset)
	return err
}
