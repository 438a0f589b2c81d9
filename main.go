//go:build !js
// +build !js

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codegangsta/cli"

	"github.com/esimov/ascii-cam/adjust"
	"github.com/esimov/ascii-cam/config"
	"github.com/esimov/ascii-cam/detector"
	server "github.com/esimov/ascii-cam/http"
	"github.com/esimov/ascii-cam/pipeline"
	"github.com/esimov/ascii-cam/raster"
	"github.com/esimov/ascii-cam/scheduler"
	"github.com/esimov/ascii-cam/source"
	"github.com/esimov/ascii-cam/telemetry"
	"github.com/esimov/ascii-cam/terminal"
)

// paintRate stands in for the browser refresh rate in the terminal.
const paintRate = 60

// video is a playable source the CPU rasterizer can sample.
type video interface {
	source.Video
	raster.FrameSource
}

func main() {
	app := cli.NewApp()
	app.Name = "ascii-cam"
	app.Usage = "Renders live video as colored ASCII art."
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML `FILE` overriding the built-in defaults.",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "Serve the page, the wasm renderer and the telemetry socket.",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "a", Usage: "Server `ADDRESS`"},
				cli.StringFlag{Name: "p", Usage: "URL `PREFIX` of the static files"},
				cli.StringFlag{Name: "r", Usage: "`ROOT` directory of the static files"},
			},
			Action: serve,
		},
		{
			Name:      "term",
			Usage:     "Render a GIF, MJPEG stream or image in the terminal. ESC or CTRL-C to quit.",
			ArgsUsage: "[file|url|-]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "gif", Usage: "Treat the input as an animated GIF."},
				cli.BoolFlag{Name: "mjpeg", Usage: "Treat the input as a stream of concatenated JPEG frames."},
				cli.StringFlag{Name: "face", Usage: "Pigo cascade `FILE` or URL. Crops frames to the detected face."},
				cli.Float64Flag{Name: "gamma,g", Usage: "`GAMMA` = 1.0 gives the original image.", Value: 1.0},
				cli.Float64Flag{Name: "brightness,b", Usage: "`BRIGHTNESS` between -100 and 100."},
				cli.Float64Flag{Name: "contrast,c", Usage: "`CONTRAST` between -100 and 100."},
				cli.Float64Flag{Name: "rate", Usage: "Playback `RATE` of animated inputs.", Value: config.PlaybackRate},
			},
			Action: term,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.GlobalString("config"))
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("a") {
		cfg.Server.Address = c.String("a")
	}
	if c.IsSet("p") {
		cfg.Server.Prefix = c.String("p")
	}
	if c.IsSet("r") {
		cfg.Server.Root = c.String("r")
	}

	srv, err := server.InitServer(cfg.Server, func(conn string, s telemetry.Stats) {
		if s.Err != "" {
			log.Printf("session %s stopped: %s", s.Session, s.Err)
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func term(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("face") {
		cfg.Face.Cascade = c.String("face")
	}
	if c.IsSet("gamma") {
		cfg.Adjust.Gamma = c.Float64("gamma")
	}
	if c.IsSet("brightness") {
		cfg.Adjust.Brightness = c.Float64("brightness")
	}
	if c.IsSet("contrast") {
		cfg.Adjust.Contrast = c.Float64("contrast")
	}
	if c.IsSet("rate") {
		cfg.PlaybackRate = c.Float64("rate")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rc, err := source.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer rc.Close()

	vid, err := openVideo(rc, c.Bool("gif"), c.Bool("mjpeg"))
	if err != nil {
		return err
	}

	frames := adjust.Wrap(vid, cfg.Adjust)
	if cfg.Face.Cascade != "" {
		det, err := detector.Load(cfg.Face.Cascade)
		if err != nil {
			return err
		}
		det.MinSize, det.Threshold = cfg.Face.MinSize, cfg.Face.Threshold
		frames = detector.NewFaceCrop(frames, det)
	}

	cpu, err := raster.NewCPU(frames, cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return err
	}

	// termbox owns the screen, keep the log out of it
	logfile, err := os.OpenFile("debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logfile.Close()
	log.SetOutput(logfile)
	defer log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface, err := terminal.New(cancel)
	if err != nil {
		return err
	}
	defer surface.Close()

	p, err := pipeline.New(cfg, vid, cpu, surface, scheduler.NewIntervalPainter(time.Second/paintRate))
	if err != nil {
		return err
	}
	defer p.Close()
	defer logDrops(vid)

	if err := p.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("render loop stopped (%s): %v", pipeline.KindOf(err), err)
		return err
	}
	return nil
}

// logDrops records how many stream frames were never rendered.
func logDrops(v video) {
	m, ok := v.(*source.MJPEG)
	if !ok {
		return
	}
	decoded, dropped := m.Counts()
	log.Printf("mjpeg: %d frames decoded, %d dropped", decoded, dropped)
}

// openVideo picks the source type. Without a flag a GIF header selects the
// GIF player and anything else is decoded as a single image.
func openVideo(r io.ReadCloser, isGIF, isMJPEG bool) (video, error) {
	if isMJPEG {
		return source.NewMJPEG(r), nil
	}

	br := bufio.NewReader(r)
	if !isGIF {
		magic, _ := br.Peek(4)
		isGIF = string(magic) == "GIF8"
	}
	if isGIF {
		g, err := source.DecodeGIF(br)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	s, err := source.DecodeStill(br)
	if err != nil {
		return nil, err
	}
	return s, nil
}
