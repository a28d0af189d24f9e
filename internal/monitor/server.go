// Package monitor serves a live view of the substrate over WebSocket:
// every event published on the bus (transitions, violations, unit changes)
// is streamed as JSON to connected clients.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/modkit/internal/events"
	"github.com/conneroisu/modkit/internal/interfaces"
	"github.com/conneroisu/modkit/internal/logging"
)

// Message is the wire form of a substrate event. The event type is
// rendered as a string so dashboards do not need the enum values.
type Message struct {
	Type         string      `json:"type"`
	Timestamp    time.Time   `json:"timestamp"`
	From         string      `json:"from,omitempty"`
	To           string      `json:"to,omitempty"`
	Path         string      `json:"path,omitempty"`
	Relationship string      `json:"relationship,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	Value        interface{} `json:"value,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server streams bus events to WebSocket clients. A hub goroutine owns the
// client set; registration, removal, and broadcast all flow through its
// channels so no client map locking is needed.
type Server struct {
	addr           string
	allowedOrigins []string
	bus            *events.Bus
	logger         logging.Logger

	httpServer *http.Server

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	clientCount int
	countMutex  sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins restricts which Origin headers may upgrade. An empty
// list allows any origin (suitable for localhost-bound development use).
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a monitor server listening on host:port, streaming
// events from the given bus.
func NewServer(host string, port int, bus *events.Bus, opts ...Option) *Server {
	s := &Server{
		addr:       fmt.Sprintf("%s:%d", host, port),
		bus:        bus,
		logger:     logging.NopLogger{},
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		broadcast:  make(chan []byte, 256),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the monitor endpoints. Exposed
// separately from Start so callers can mount it on their own server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// startHub launches the hub and bus pump goroutines.
func (s *Server) startHub(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.runHub()
	go s.pumpBus()
}

// Start runs the hub, subscribes to the bus, and serves HTTP until the
// context is cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.startHub(ctx)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info(s.ctx, "monitor listening", "addr", s.addr)

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server, disconnects clients, and waits for the
// hub to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return err
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.countMutex.RLock()
	defer s.countMutex.RUnlock()
	return s.clientCount
}

func (s *Server) setClientCount(n int) {
	s.countMutex.Lock()
	s.clientCount = n
	s.countMutex.Unlock()
}

// runHub owns the client set. All membership changes and broadcasts are
// serialized here.
func (s *Server) runHub() {
	defer s.wg.Done()

	clients := make(map[*client]struct{})
	defer func() {
		for c := range clients {
			close(c.send)
			_ = c.conn.Close(websocket.StatusNormalClosure, "monitor shutting down")
		}
		s.setClientCount(0)
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case c := <-s.register:
			clients[c] = struct{}{}
			s.setClientCount(len(clients))
		case c := <-s.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				s.setClientCount(len(clients))
			}
		case message := <-s.broadcast:
			for c := range clients {
				select {
				case c.send <- message:
				default:
					// Slow client: drop it rather than stall the hub
					delete(clients, c)
					close(c.send)
					s.setClientCount(len(clients))
				}
			}
		}
	}
}

// pumpBus translates bus events into broadcast frames.
func (s *Server) pumpBus() {
	defer s.wg.Done()

	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(encodeEvent(event))
			if err != nil {
				s.logger.Error(s.ctx, err, "failed to encode event")
				continue
			}
			select {
			case s.broadcast <- payload:
			default:
				// Broadcast buffer full; the monitor is best-effort
			}
		}
	}
}

func encodeEvent(event interfaces.Event) Message {
	return Message{
		Type:         event.Type.String(),
		Timestamp:    event.Timestamp,
		From:         event.From,
		To:           event.To,
		Path:         event.Path,
		Relationship: event.Relationship,
		Reason:       event.Reason,
		Value:        event.Value,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","clients":%d}`, s.ClientCount())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.originAllowed(r) {
		s.logger.Warn(s.ctx, nil, "rejected websocket upgrade",
			"origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin already validated above against the configured list
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionDisabled,
	})
	if err != nil {
		s.logger.Warn(s.ctx, err, "websocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}

	select {
	case s.register <- c:
	case <-s.ctx.Done():
		_ = conn.Close(websocket.StatusGoingAway, "monitor shutting down")
		return
	}

	go s.writePump(c)
	go s.readPump(c)
}

// originAllowed checks the Origin header against the configured list.
// Requests without an Origin header (non-browser clients) are allowed.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// writePump drains the client's send channel onto the connection. Exits
// when the hub closes the channel.
func (s *Server) writePump(c *client) {
	for message := range c.send {
		writeCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
		err := c.conn.Write(writeCtx, websocket.MessageText, message)
		cancel()
		if err != nil {
			break
		}
	}
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

// readPump discards inbound frames so pings and close frames are handled,
// and unregisters the client when the connection drops.
func (s *Server) readPump(c *client) {
	defer func() {
		select {
		case s.unregister <- c:
		case <-s.ctx.Done():
		}
	}()

	for {
		if _, _, err := c.conn.Read(s.ctx); err != nil {
			return
		}
	}
}
