// Package sampler drives the sample → compute → render cycle.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"traffic-monitor/internal/metrics"
	"traffic-monitor/internal/traffic"
)

type State int

const (
	Idle State = iota
	Running
	Stopped
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Renderer draws one completed tick. It is called synchronously from the loop.
type Renderer interface {
	Render(frame traffic.Frame) error
}

// Hook runs after a frame has been rendered.
type Hook func(frame traffic.Frame)

type Options struct {
	Interface string
	Interval  time.Duration
	View      traffic.ViewMode
	// Limit is the number of ticks to run; 0 runs until cancelled.
	Limit int
}

type Loop struct {
	opts     Options
	source   metrics.Source
	agg      *traffic.Aggregator
	scale    *traffic.ScaleTracker
	renderer Renderer
	hooks    []Hook
	clock    clock.Clock
	log      *slog.Logger

	state   State
	ticks   int
	started time.Time
	last    traffic.Frame
	hasLast bool
}

type Option func(*Loop)

func WithClock(clk clock.Clock) Option {
	return func(l *Loop) { l.clock = clk }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

func WithHooks(hooks ...Hook) Option {
	return func(l *Loop) { l.hooks = append(l.hooks, hooks...) }
}

// New wires a loop. The aggregator and scale tracker are owned by the loop
// from here on.
func New(opts Options, source metrics.Source, agg *traffic.Aggregator, scale *traffic.ScaleTracker, renderer Renderer, options ...Option) *Loop {
	l := &Loop{
		opts:     opts,
		source:   source,
		agg:      agg,
		scale:    scale,
		renderer: renderer,
		clock:    clock.New(),
		log:      slog.Default(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *Loop) validate() error {
	switch {
	case l.source == nil:
		return errors.New("sampler: counter source is required")
	case l.agg == nil:
		return errors.New("sampler: aggregator is required")
	case l.scale == nil:
		return errors.New("sampler: scale tracker is required")
	case l.renderer == nil:
		return errors.New("sampler: renderer is required")
	case l.opts.Interval <= 0:
		return fmt.Errorf("sampler: interval must be positive, got %s", l.opts.Interval)
	case l.opts.Limit < 0:
		return fmt.Errorf("sampler: limit cannot be negative, got %d", l.opts.Limit)
	}
	if _, err := traffic.ParseViewMode(string(l.opts.View)); err != nil {
		return fmt.Errorf("sampler: %w", err)
	}
	return nil
}

// Run blocks until the iteration limit is reached (nil), ctx is cancelled
// (nil), or the counter source or renderer fails (error). Cancellation is
// only observed between ticks, so a tick is never half rendered.
func (l *Loop) Run(ctx context.Context) error {
	if l.state != Idle {
		return fmt.Errorf("sampler: loop already %s", l.state)
	}
	if err := l.validate(); err != nil {
		l.state = Stopped
		return err
	}

	l.state = Running
	l.log.Info("sampling started",
		"iface", l.opts.Interface,
		"interval", l.opts.Interval,
		"view", l.opts.View,
		"limit", l.opts.Limit,
	)

	for {
		start := l.clock.Now()

		if err := l.tick(ctx); err != nil {
			l.state = Stopped
			if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				l.log.Info("sampling interrupted", "ticks", l.ticks)
				return nil
			}
			l.log.Error("sampling stopped", "error", err, "ticks", l.ticks)
			return err
		}

		if l.opts.Limit > 0 && l.ticks >= l.opts.Limit {
			l.state = Exhausted
			l.log.Info("sampling finished", "ticks", l.ticks)
			return nil
		}

		if !l.wait(ctx, l.opts.Interval-l.clock.Since(start)) {
			l.state = Stopped
			l.log.Info("sampling interrupted", "ticks", l.ticks)
			return nil
		}
	}
}

// wait sleeps for d and reports false when ctx ends first.
func (l *Loop) wait(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}

	timer := l.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (l *Loop) tick(ctx context.Context) error {
	snap, err := l.source.Read(ctx, l.opts.Interface)
	if err != nil {
		return &CollectorError{Interface: l.opts.Interface, Tick: l.ticks + 1, Err: err}
	}

	res := l.agg.Tick(snap)
	if res.Events.Has(traffic.EventClockAnomaly) {
		l.log.Debug("non-positive elapsed time, keeping previous rates", "elapsed", res.Elapsed)
	}
	if res.Events.Has(traffic.EventResetIn) || res.Events.Has(traffic.EventResetOut) {
		l.log.Debug("counter decreased, rebaselined", "events", res.Events.String())
	}

	if l.ticks == 0 {
		l.started = snap.Timestamp
	}

	frame := traffic.Frame{
		Interface: l.opts.Interface,
		View:      l.opts.View,
		Seq:       l.ticks + 1,
		Timestamp: snap.Timestamp,
		Uptime:    snap.Timestamp.Sub(l.started),
		Result:    res,
		Scale:     l.scale.ObserveRates(res.Raw, res.EMA),
		Smoothing: l.agg.Smoothing(),
		Alpha:     l.agg.Alpha(),
	}

	if err := l.renderer.Render(frame); err != nil {
		return fmt.Errorf("render tick %d: %w", frame.Seq, err)
	}

	l.ticks++
	l.last = frame
	l.hasLast = true

	for _, hook := range l.hooks {
		hook(frame)
	}
	return nil
}

func (l *Loop) State() State {
	return l.state
}

func (l *Loop) Ticks() int {
	return l.ticks
}

// Last returns the most recent fully completed frame.
func (l *Loop) Last() (traffic.Frame, bool) {
	return l.last, l.hasLast
}
