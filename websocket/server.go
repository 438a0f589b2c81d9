package websocket

import (
	"context"
	"log"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/esimov/ascii-cam/telemetry"
)

// HttpParams defines where and what the server serves.
type HttpParams struct {
	Address string
	Prefix  string
	Root    string
}

// ReportFunc receives every telemetry report with the id of its connection.
type ReportFunc func(conn string, s telemetry.Stats)

// Server serves the page, the wasm binary and the telemetry socket.
type Server struct {
	params   HttpParams
	upgrader websocket.Upgrader
	onReport ReportFunc
	http     *http.Server

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewServer resolves the static root and prepares the handlers.
func NewServer(p HttpParams, onReport ReportFunc) (*Server, error) {
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return nil, err
	}
	p.Root = root
	if p.Prefix == "" {
		p.Prefix = "/"
	}
	s := &Server{
		params: p,
		// A server application calls the Upgrade method from an HTTP request handler to initiate a connection
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		onReport: onReport,
		conns:    make(map[string]*websocket.Conn),
	}
	s.http = &http.Server{
		Addr:    p.Address,
		Handler: s.Handler(),
	}
	return s, nil
}

// Handler returns the request logging mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.params.Prefix, http.StripPrefix(s.params.Prefix, http.FileServer(http.Dir(s.params.Root))))
	mux.HandleFunc("/ws", s.wsHandler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Print(r.RemoteAddr + " " + r.Method + " " + r.URL.String())
		mux.ServeHTTP(w, r)
	})
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	log.Printf("serving %s as %s on %s", s.params.Root, s.params.Prefix, s.params.Address)
	if err := s.http.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes open sockets.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	return s.http.Shutdown(ctx)
}

// wsHandler defines the websocket connection endpoint
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	// Upgrade the http connection to a WebSocket connection
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			log.Println(err)
		}
		return
	}
	id := uuid.New().String()
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()

	log.Printf("telemetry %s connected from %s", id, r.RemoteAddr)
	go s.readSocket(id, conn)
}

// readSocket listen for new messages being sent to the websocket
func (s *Server) readSocket(id string, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		messageType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("telemetry %s: %v", id, err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			log.Printf("telemetry %s: received: %s", id, msg)
			continue
		}
		stats, err := telemetry.Decode(msg)
		if err != nil {
			log.Printf("telemetry %s: %v", id, err)
			continue
		}
		log.Printf("telemetry %s: %s", id, stats)
		if s.onReport != nil {
			s.onReport(id, stats)
		}
	}
}
