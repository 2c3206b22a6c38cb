package traffic

import "time"

// Frame is everything a renderer needs for one completed tick.
type Frame struct {
	Interface string
	View      ViewMode
	Seq       int
	Timestamp time.Time
	Uptime    time.Duration
	Result
	Scale ScaleState

	// Smoothing is false under --no-ema, where the EMA fields mirror raw.
	Smoothing bool
	Alpha     float64
}

// Record is the flat, serializable form of a Frame shared by the JSON
// renderer and the event log.
type Record struct {
	Interface   string   `json:"iface"`
	View        ViewMode `json:"view"`
	Seq         int      `json:"seq"`
	Timestamp   string   `json:"timestamp"`
	IntervalSec float64  `json:"interval"`
	InBps       float64  `json:"recv_Bps"`
	OutBps      float64  `json:"sent_Bps"`
	InEMABps    float64  `json:"recv_ema_Bps"`
	OutEMABps   float64  `json:"sent_ema_Bps"`
	TotalIn     uint64   `json:"total_recv_B"`
	TotalOut    uint64   `json:"total_sent_B"`
	MaxIn       float64  `json:"max_recv_Bps"`
	MaxOut      float64  `json:"max_sent_Bps"`
	UptimeSec   float64  `json:"uptime"`
	EMAEnabled  bool     `json:"ema_enabled"`
	EMAAlpha    float64  `json:"ema_alpha"`
	Events      []string `json:"events,omitempty"`
}

func (f Frame) Record() Record {
	return Record{
		Interface:   f.Interface,
		View:        f.View,
		Seq:         f.Seq,
		Timestamp:   f.Timestamp.UTC().Format(time.RFC3339Nano),
		IntervalSec: f.Elapsed.Seconds(),
		InBps:       f.Raw.In,
		OutBps:      f.Raw.Out,
		InEMABps:    f.EMA.In,
		OutEMABps:   f.EMA.Out,
		TotalIn:     f.Totals.In,
		TotalOut:    f.Totals.Out,
		MaxIn:       f.Scale.MaxIn,
		MaxOut:      f.Scale.MaxOut,
		UptimeSec:   f.Uptime.Seconds(),
		EMAEnabled:  f.Smoothing,
		EMAAlpha:    f.Alpha,
		Events:      f.Events.Strings(),
	}
}
