//go:build js && wasm
// +build js,wasm

package canvas

import (
	"log"
	"syscall/js"

	"github.com/google/uuid"

	"github.com/esimov/ascii-cam/scheduler"
	"github.com/esimov/ascii-cam/telemetry"
)

// Socket sends telemetry reports back to the page server.
type Socket struct {
	session string
	ws      js.Value
}

// InitWebSocket connects to the telemetry endpoint of the host.
func InitWebSocket(host string) *Socket {
	s := &Socket{
		session: uuid.New().String(),
		ws:      js.Global().Get("WebSocket").New("ws://" + host + "/ws"),
	}
	s.ws.Set("binaryType", "arraybuffer")
	return s
}

// Report sends the scheduler counters. Reports are dropped while the
// socket is not open.
func (s *Socket) Report(stats scheduler.Stats) {
	s.send(telemetry.FromScheduler(s.session, stats))
}

// ReportError sends a final report carrying the error that stopped the loop.
func (s *Socket) ReportError(stats scheduler.Stats, err error) {
	r := telemetry.FromScheduler(s.session, stats)
	r.Err = err.Error()
	s.send(r)
}

func (s *Socket) send(r telemetry.Stats) {
	// WebSocket.OPEN
	if s.ws.Get("readyState").Int() != 1 {
		return
	}
	data, err := telemetry.Encode(r)
	if err != nil {
		log.Println(err)
		return
	}
	buf := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(buf, data)
	s.ws.Call("send", buf)
}

// Close closes the socket.
func (s *Socket) Close() {
	s.ws.Call("close")
}
