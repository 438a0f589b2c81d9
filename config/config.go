// Package config holds the renderer settings. Default returns the built-in
// constants; native commands may overlay a YAML file on top of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	GridWidth    = 192
	GridHeight   = 64
	FrameDelay   = 24 * time.Millisecond
	PlaybackRate = 1.0
)

// Tint modes.
const (
	TintColor = "color"
	TintGray  = "gray"
)

var ErrInvalid = errors.New("invalid config")

// Config is the complete renderer configuration.
type Config struct {
	Grid         Grid          `yaml:"grid"`
	FrameDelay   time.Duration `yaml:"frame_delay"`
	PlaybackRate float64       `yaml:"playback_rate"`
	Tint         string        `yaml:"tint"`
	Server       Server        `yaml:"server"`
	Face         Face          `yaml:"face"`
	Adjust       Adjust        `yaml:"adjust"`
}

// Grid is the sampling lattice size.
type Grid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Server is where the page and the telemetry socket are served.
type Server struct {
	Address string `yaml:"address"`
	Prefix  string `yaml:"prefix"`
	Root    string `yaml:"root"`
}

// Face enables cropping native frames to the detected face.
type Face struct {
	Cascade   string  `yaml:"cascade"`
	MinSize   int     `yaml:"min_size"`
	Threshold float32 `yaml:"threshold"`
}

// Adjust holds optional image adjustments applied before rasterizing.
// Zero values (and gamma 1) leave frames untouched.
type Adjust struct {
	Gamma      float64 `yaml:"gamma"`
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid:         Grid{Width: GridWidth, Height: GridHeight},
		FrameDelay:   FrameDelay,
		PlaybackRate: PlaybackRate,
		Tint:         TintColor,
		Server: Server{
			Address: "localhost:5000",
			Prefix:  "/",
			Root:    "./static",
		},
		Face: Face{
			MinSize:   100,
			Threshold: 5,
		},
		Adjust: Adjust{Gamma: 1},
	}
}

// Load reads filename over the defaults. A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the pipeline depends on.
func (c *Config) Validate() error {
	switch {
	case c.Grid.Width <= 0 || c.Grid.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	case c.FrameDelay <= 0:
		return fmt.Errorf("%w: frame_delay %v", ErrInvalid, c.FrameDelay)
	case c.PlaybackRate <= 0:
		return fmt.Errorf("%w: playback_rate %v", ErrInvalid, c.PlaybackRate)
	case c.Tint != TintColor && c.Tint != TintGray:
		return fmt.Errorf("%w: tint %q", ErrInvalid, c.Tint)
	case c.Adjust.Gamma <= 0:
		return fmt.Errorf("%w: gamma %v", ErrInvalid, c.Adjust.Gamma)
	}
	return nil
}
