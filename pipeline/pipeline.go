// Package pipeline wires the render stages together: rasterize, read back,
// map glyphs, composite, present. A Pipeline is built once at startup and
// owns every stage for its lifetime.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/esimov/ascii-cam/compositor"
	"github.com/esimov/ascii-cam/config"
	"github.com/esimov/ascii-cam/glyph"
	"github.com/esimov/ascii-cam/raster"
	"github.com/esimov/ascii-cam/scheduler"
	"github.com/esimov/ascii-cam/source"
)

// Opt configures a Pipeline.
type Opt func(p *Pipeline)

// WithTable replaces the default glyph table.
func WithTable(t glyph.Table) Opt {
	return func(p *Pipeline) {
		p.table = t
	}
}

// WithMapperOpts passes options to the glyph mapper.
func WithMapperOpts(opts ...glyph.MapperOpt) Opt {
	return func(p *Pipeline) {
		p.mapperOpts = append(p.mapperOpts, opts...)
	}
}

// WithReport calls fn with the scheduler stats every n ticks.
func WithReport(n int, fn func(scheduler.Stats)) Opt {
	return func(p *Pipeline) {
		p.reportEvery, p.report = n, fn
	}
}

// WithSchedulerOpts passes options to the scheduler.
func WithSchedulerOpts(opts ...scheduler.Opt) Opt {
	return func(p *Pipeline) {
		p.schedOpts = append(p.schedOpts, opts...)
	}
}

// Pipeline is the render context shared by all stages.
type Pipeline struct {
	cfg        *config.Config
	video      source.Video
	rasterizer raster.Rasterizer
	reader     *raster.Reader
	comp       *compositor.Compositor
	surface    compositor.Surface
	sched      *scheduler.Scheduler

	table       glyph.Table
	mapperOpts  []glyph.MapperOpt
	schedOpts   []scheduler.Opt
	reportEvery int
	report      func(scheduler.Stats)
	ticks       int64
}

// New builds a pipeline. The rasterizer must already be bound to the video
// source and sized to cfg.Grid.
func New(cfg *config.Config, video source.Video, r raster.Rasterizer, s compositor.Surface, painter scheduler.Painter, opts ...Opt) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:        cfg,
		video:      video,
		rasterizer: r,
		reader:     raster.NewReader(cfg.Grid.Width, cfg.Grid.Height),
		surface:    s,
		table:      glyph.DefaultTable,
	}
	for _, opt := range opts {
		opt(p)
	}

	mapper, err := glyph.NewMapper(p.table, p.mapperOpts...)
	if err != nil {
		return nil, err
	}
	tint := compositor.TintColor
	if cfg.Tint == config.TintGray {
		tint = compositor.TintGray
	}
	p.comp = compositor.New(mapper, tint)
	p.sched = scheduler.New(scheduler.Policy{Delay: cfg.FrameDelay}, painter, p.schedOpts...)
	return p, nil
}

// Start waits for the video source, starts playback and runs the render loop
// until ctx is done or a tick fails.
func (p *Pipeline) Start(ctx context.Context) error {
	if err := p.video.Ready(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnready, err)
	}
	if err := p.video.Play(); err != nil {
		return fmt.Errorf("%w: play: %v", ErrSourceUnready, err)
	}
	if err := p.video.SetPlaybackRate(p.cfg.PlaybackRate); err != nil {
		return fmt.Errorf("%w: playback rate: %v", ErrSourceUnready, err)
	}
	return p.sched.Run(ctx, p.Tick)
}

// Tick runs one full pass and replaces the surface content.
func (p *Pipeline) Tick(ctx context.Context) error {
	// one snapshot per tick: glyphs and tints come from the same frame
	if err := p.rasterizer.Upload(); err != nil {
		return sourceErr(err, "upload")
	}
	gray, err := p.pass(raster.Grayscale)
	if err != nil {
		return err
	}
	var color *raster.FrameBuffer
	if p.comp.TintSource() == compositor.TintColor {
		if color, err = p.pass(raster.Color); err != nil {
			return err
		}
	}
	frame, err := p.comp.Compose(gray, color)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadback, err)
	}
	if err := p.surface.Present(frame); err != nil {
		return fmt.Errorf("%w: %v", ErrPresent, err)
	}

	n := atomic.AddInt64(&p.ticks, 1)
	if p.report != nil && p.reportEvery > 0 && n%int64(p.reportEvery) == 0 {
		p.report(p.sched.Stats())
	}
	return nil
}

// Stats returns the scheduler counters.
func (p *Pipeline) Stats() scheduler.Stats {
	return p.sched.Stats()
}

// Close releases the rasterizer.
func (p *Pipeline) Close() error {
	return p.rasterizer.Close()
}

func (p *Pipeline) pass(mode raster.Mode) (*raster.FrameBuffer, error) {
	if err := p.rasterizer.Render(mode); err != nil {
		return nil, sourceErr(err, "render "+mode.String())
	}
	return p.reader.Read(p.rasterizer.Target())
}

// sourceErr keeps classified errors and files everything else under
// ErrSourceUnready.
func sourceErr(err error, op string) error {
	if known(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrSourceUnready, op, err)
}
