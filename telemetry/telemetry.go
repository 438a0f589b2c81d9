// Package telemetry defines the counters the browser reports back to the
// server. Rendered output is never part of a report.
package telemetry

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/esimov/ascii-cam/scheduler"
)

// Stats is one report sent over the telemetry socket.
type Stats struct {
	Session    string  `msgpack:"session"`
	Ticks      int64   `msgpack:"ticks"`
	Rate       float64 `msgpack:"rate"`
	TickMillis float64 `msgpack:"tick_ms"`
	Err        string  `msgpack:"err,omitempty"`
}

// FromScheduler builds a report from the scheduler counters.
func FromScheduler(session string, s scheduler.Stats) Stats {
	return Stats{
		Session:    session,
		Ticks:      s.Ticks,
		Rate:       s.Rate,
		TickMillis: float64(s.MeanTick) / float64(time.Millisecond),
	}
}

// Encode serializes a report.
func Encode(s Stats) ([]byte, error) {
	return msgpack.Marshal(&s)
}

// Decode parses a report.
func Decode(data []byte) (Stats, error) {
	var s Stats
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return Stats{}, fmt.Errorf("decoding telemetry: %w", err)
	}
	return s, nil
}

func (s Stats) String() string {
	if s.Err != "" {
		return fmt.Sprintf("ticks=%d rate=%.1f/s tick=%.1fms err=%q", s.Ticks, s.Rate, s.TickMillis, s.Err)
	}
	return fmt.Sprintf("ticks=%d rate=%.1f/s tick=%.1fms", s.Ticks, s.Rate, s.TickMillis)
}
