package render

import (
	"context"
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"traffic-monitor/internal/traffic"
)

const historySize = 90

// Dashboard is a full-screen termui view: two gauges scaled against the
// session maxima, two sparklines, and a totals panel.
type Dashboard struct {
	grid    *ui.Grid
	header  *widgets.Paragraph
	outBar  *widgets.Gauge
	inBar   *widgets.Gauge
	outLine *widgets.Sparkline
	inLine  *widgets.Sparkline
	outSG   *widgets.SparklineGroup
	inSG    *widgets.SparklineGroup
	totals  *widgets.Paragraph

	outHistory []float64
	inHistory  []float64
}

func NewDashboard(opts Options) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to init termui: %w", err)
	}

	d := &Dashboard{
		header: widgets.NewParagraph(),
		outBar: widgets.NewGauge(),
		inBar:  widgets.NewGauge(),
		totals: widgets.NewParagraph(),
	}

	d.header.Title = " Network Traffic "
	d.header.BorderStyle.Fg = ui.ColorBlue

	d.outBar.Title = " OUT "
	d.outBar.BarColor = ui.ColorGreen
	d.outBar.BorderStyle.Fg = ui.ColorGreen
	d.inBar.Title = " IN "
	d.inBar.BarColor = ui.ColorCyan
	d.inBar.BorderStyle.Fg = ui.ColorCyan

	d.outLine = widgets.NewSparkline()
	d.outLine.LineColor = ui.ColorGreen
	d.outSG = widgets.NewSparklineGroup(d.outLine)
	d.outSG.Title = " Upload "
	d.outSG.BorderStyle.Fg = ui.ColorGreen

	d.inLine = widgets.NewSparkline()
	d.inLine.LineColor = ui.ColorCyan
	d.inSG = widgets.NewSparklineGroup(d.inLine)
	d.inSG.Title = " Download "
	d.inSG.BorderStyle.Fg = ui.ColorCyan

	d.totals.Title = " Total since start "
	d.totals.BorderStyle.Fg = ui.ColorYellow

	d.grid = ui.NewGrid()
	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(0.6, d.header),
			ui.NewCol(0.4, d.totals),
		),
		ui.NewRow(0.2,
			ui.NewCol(0.5, d.outBar),
			ui.NewCol(0.5, d.inBar),
		),
		ui.NewRow(0.6,
			ui.NewCol(0.5, d.outSG),
			ui.NewCol(0.5, d.inSG),
		),
	)

	return d, nil
}

func (d *Dashboard) Render(f traffic.Frame) error {
	bars := traffic.BarSample(f.View, f.Raw, f.EMA)

	d.header.Text = headerText(f)

	d.outBar.Percent = traffic.BarLength(bars.Out, f.Scale.MaxOut, 100)
	d.outBar.Label = fmt.Sprintf("%s (peak %s)", FormatRate(bars.Out), FormatRate(f.Scale.MaxOut))
	d.inBar.Percent = traffic.BarLength(bars.In, f.Scale.MaxIn, 100)
	d.inBar.Label = fmt.Sprintf("%s (peak %s)", FormatRate(bars.In), FormatRate(f.Scale.MaxIn))

	d.outHistory = pushHistory(d.outHistory, bars.Out, historySize)
	d.inHistory = pushHistory(d.inHistory, bars.In, historySize)
	d.outLine.Data = d.outHistory
	d.outLine.MaxVal = f.Scale.MaxOut
	d.inLine.Data = d.inHistory
	d.inLine.MaxVal = f.Scale.MaxIn

	d.totals.Text = fmt.Sprintf("Sent: %s\nRecv: %s\nTime: %d sec",
		FormatBytes(float64(f.Totals.Out)),
		FormatBytes(float64(f.Totals.In)),
		int(f.Uptime.Seconds()),
	)

	width, height := ui.TerminalDimensions()
	d.grid.SetRect(0, 0, width, height)
	ui.Render(d.grid)
	return nil
}

// Watch turns q and Ctrl+C into stop(); the terminal is in raw mode, so
// Ctrl+C never reaches the process as a signal.
func (d *Dashboard) Watch(ctx context.Context, stop context.CancelFunc) error {
	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			if e.Type == ui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>") {
				stop()
				return nil
			}
		}
	}
}

func (d *Dashboard) Close() error {
	ui.Close()
	return nil
}

func headerText(f traffic.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] view %s | %s\n", f.Interface, strings.ToUpper(string(f.View)), f.Timestamp.Format("15:04:05"))
	switch f.View {
	case traffic.ViewBoth:
		fmt.Fprintf(&b, "OUT raw %s | avg %s\n", FormatRate(f.Raw.Out), FormatRate(f.EMA.Out))
		fmt.Fprintf(&b, "IN  raw %s | avg %s", FormatRate(f.Raw.In), FormatRate(f.EMA.In))
	default:
		s := traffic.BarSample(f.View, f.Raw, f.EMA)
		fmt.Fprintf(&b, "OUT %s\nIN  %s", FormatRate(s.Out), FormatRate(s.In))
	}
	return b.String()
}

// pushHistory appends v and drops the oldest points beyond size, so the
// chart grows from the left before it starts scrolling.
func pushHistory(h []float64, v float64, size int) []float64 {
	if len(h) >= size {
		h = h[len(h)-size+1:]
	}
	return append(h, v)
}
