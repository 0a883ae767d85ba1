// Package server exposes the sampled streams over WebSocket, one endpoint
// per resource kind. Each connection gets its own hub subscription and its
// own write pump, so a stalled viewer only ever stalls itself.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/hub"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// DefaultWriteTimeout bounds one frame write. A client that cannot accept
// a frame within this window is treated as gone.
const DefaultWriteTimeout = 5 * time.Second

// HubSource provides the hubs the server streams from. Satisfied by
// sampler.Registry.
type HubSource interface {
	Kinds() []payload.Kind
	Hub(kind payload.Kind) (*hub.Hub, bool)
}

// Server serves /ws/<kind> stream endpoints plus small JSON endpoints for
// discovery and health.
type Server struct {
	log          logger.Logger
	source       HubSource
	mux          *http.ServeMux
	http         *http.Server
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// New wires a server for every kind the source carries.
func New(addr string, source HubSource, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{
		log:    log,
		source: source,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		writeTimeout: DefaultWriteTimeout,
	}

	for _, kind := range source.Kinds() {
		s.mux.HandleFunc("/ws/"+kind.String(), s.streamHandler(kind))
	}
	s.mux.HandleFunc("/api/kinds", s.handleKinds)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.log.Info("[server] listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return errors.WrapWithCode(err, errors.ErrServer,
		"Server stopped unexpectedly",
		"Check that the listen address is valid and the port is free")
}

// Shutdown stops accepting connections and drains handlers. Stream pumps
// exit when their hubs close, not here.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// streamHandler upgrades the connection and runs its pumps until either
// side goes away.
func (s *Server) streamHandler(kind payload.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := s.source.Hub(kind)
		if !ok {
			http.NotFound(w, r)
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug("[server] %s upgrade failed: %v", kind, err)
			return
		}

		sub := h.Subscribe()
		s.log.Debug("[server] %s viewer connected from %s", kind, r.RemoteAddr)

		go s.readPump(conn, h, sub)
		s.writePump(conn, h, sub)
	}
}

// writePump delivers snapshots until the subscription closes or a write
// fails. Details sections are only written on the first frame and when
// their revision changes; in between, clients reuse what they already
// have.
func (s *Server) writePump(conn *websocket.Conn, h *hub.Hub, sub *hub.Subscription) {
	defer func() {
		h.Unsubscribe(sub)
		conn.Close()
	}()

	first := true
	var lastRev uint64

	for snap := range sub.C() {
		msg := snap.Msg
		if !first && snap.DetailsRev == lastRev {
			msg = msg.WithoutDetails()
		}

		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			s.log.Debug("[server] %s viewer dropped: %v", h.Kind(), err)
			return
		}
		first = false
		lastRev = snap.DetailsRev
	}

	// Subscription closed underneath us: the hub shut down. Tell the
	// client this is a server-side goodbye, not an error.
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), deadline)
}

// readPump discards inbound frames; the stream is one-way. Its real job
// is noticing the client closed so the subscription is released promptly
// instead of on the next failed write.
func (s *Server) readPump(conn *websocket.Conn, h *hub.Hub, sub *hub.Subscription) {
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Unsubscribe(sub)
			return
		}
	}
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kinds := s.source.Kinds()
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	s.writeJSON(w, map[string][]string{"kinds": names})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("[server] response encode failed: %v", err)
	}
}
