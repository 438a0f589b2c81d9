// Package scheduler drives the render pipeline at a bounded rate, synced to
// the display's paint cycle.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// DefaultDelay is the pause between the end of one tick and the paint
// request for the next one.
const DefaultDelay = 24 * time.Millisecond

// Painter is the cooperative yield point: fn runs on the next paint of the
// display.
type Painter interface {
	RequestFrame(fn func())
}

// TickFunc runs one pipeline pass.
type TickFunc func(ctx context.Context) error

// Policy bounds the tick rate. Two tick starts are never closer than Delay,
// so at most 1s/Delay ticks run per second.
type Policy struct {
	Delay time.Duration
}

// DefaultPolicy caps the loop at roughly 30 fps once paint sync is added.
func DefaultPolicy() Policy {
	return Policy{Delay: DefaultDelay}
}

// MaxTicks returns the upper bound of ticks that can start within d.
func (p Policy) MaxTicks(d time.Duration) int {
	return int(d/p.Delay) + 1
}

// Stats is a snapshot of the scheduler counters.
type Stats struct {
	Ticks    int64
	Rate     float64
	MeanTick time.Duration
	MaxTick  time.Duration
}

// Opt configures a Scheduler.
type Opt func(s *Scheduler)

// WithLogEvery logs the average tick rate every n ticks; 0 disables it.
func WithLogEvery(n int) Opt {
	return func(s *Scheduler) {
		s.logEvery = n
	}
}

// WithRegistry registers the tick meters in r instead of a private registry.
func WithRegistry(r metrics.Registry) Opt {
	return func(s *Scheduler) {
		s.registry = r
	}
}

// Scheduler runs a TickFunc until it fails or the context ends.
type Scheduler struct {
	policy   Policy
	painter  Painter
	registry metrics.Registry
	ticks    metrics.Meter
	duration metrics.Timer
	logEvery int
}

// New returns a Scheduler. Painter p must not be nil.
func New(policy Policy, p Painter, opts ...Opt) *Scheduler {
	s := &Scheduler{
		policy:   policy,
		painter:  p,
		logEvery: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = metrics.NewRegistry()
	}
	s.ticks = metrics.GetOrRegisterMeter("ticks", s.registry)
	s.duration = metrics.GetOrRegisterTimer("tick.duration", s.registry)
	return s
}

// Run calls tick, waits Policy.Delay, then waits for the next paint, and
// repeats. It returns the first tick error, or the context error once ctx is
// done.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	checkpoint := time.Now()
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := tick(ctx); err != nil {
			return fmt.Errorf("tick %d: %w", n, err)
		}
		s.duration.UpdateSince(start)
		s.ticks.Mark(1)

		if s.logEvery > 0 && n%s.logEvery == 0 {
			log.Printf("avg rate for past %d ticks: %.1f/s", s.logEvery, float64(s.logEvery)/time.Since(checkpoint).Seconds())
			checkpoint = time.Now()
		}

		delay := time.NewTimer(s.policy.Delay)
		select {
		case <-ctx.Done():
			delay.Stop()
			return ctx.Err()
		case <-delay.C:
		}

		painted := make(chan struct{})
		s.painter.RequestFrame(func() { close(painted) })
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-painted:
		}
	}
}

// Stats returns the current counters.
func (s *Scheduler) Stats() Stats {
	t := s.duration.Snapshot()
	return Stats{
		Ticks:    s.ticks.Count(),
		Rate:     s.ticks.Rate1(),
		MeanTick: time.Duration(t.Mean()),
		MaxTick:  time.Duration(t.Max()),
	}
}

// IntervalPainter stands in for a display refresh when no real paint
// callback exists: fn runs on the next multiple of Interval.
type IntervalPainter struct {
	interval time.Duration
	epoch    time.Time
}

// NewIntervalPainter returns a painter refreshing every interval.
func NewIntervalPainter(interval time.Duration) *IntervalPainter {
	return &IntervalPainter{
		interval: interval,
		epoch:    time.Now(),
	}
}

// RequestFrame schedules fn on the next refresh boundary.
func (p *IntervalPainter) RequestFrame(fn func()) {
	elapsed := time.Since(p.epoch)
	time.AfterFunc(p.interval-elapsed%p.interval, fn)
}
