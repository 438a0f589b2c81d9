package pipeline

import (
	"errors"

	"github.com/esimov/ascii-cam/raster"
)

// Kind classifies pipeline failures so callers can decide whether to log,
// retry or abort.
type Kind int

const (
	KindUnknown Kind = iota
	KindContextUnavailable
	KindShaderCompile
	KindSourceUnready
	KindReadback
	KindPresent
)

var (
	ErrContextUnavailable = raster.ErrContextUnavailable
	ErrShaderCompile      = raster.ErrShaderCompile
	ErrReadback           = raster.ErrReadback
	ErrSourceUnready      = errors.New("video source not ready")
	ErrPresent            = errors.New("presenting frame failed")
)

func (k Kind) String() string {
	switch k {
	case KindContextUnavailable:
		return "context-unavailable"
	case KindShaderCompile:
		return "shader-compile-failed"
	case KindSourceUnready:
		return "source-unready"
	case KindReadback:
		return "readback-failed"
	case KindPresent:
		return "present-failed"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of a pipeline error.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrContextUnavailable):
		return KindContextUnavailable
	case errors.Is(err, ErrShaderCompile):
		return KindShaderCompile
	case errors.Is(err, ErrSourceUnready):
		return KindSourceUnready
	case errors.Is(err, ErrReadback):
		return KindReadback
	case errors.Is(err, ErrPresent):
		return KindPresent
	default:
		return KindUnknown
	}
}

// known reports whether err already carries a pipeline kind.
func known(err error) bool {
	return KindOf(err) != KindUnknown
}
