package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fortuna/prospect/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	eval   Evaluator
	logger *log.Logger

	// sessions end when Shutdown cancels this context
	sessions context.Context
	cancel   context.CancelFunc
}

// NewServer creates a new WebSocket server listening on port. m may be nil.
func NewServer(port string, eval Evaluator, m metrics.Metrics) *Server {
	s := &Server{
		port:   port,
		hub:    NewHub(m),
		eval:   eval,
		logger: log.WithPrefix("ws"),
	}
	s.sessions, s.cancel = context.WithCancel(context.Background())
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Handler(s.sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub returns the session hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the WebSocket routes. Sessions live until ctx is
// cancelled or the peer disconnects.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/session", func(w http.ResponseWriter, r *http.Request) {
		s.handleSession(ctx, w, r)
	})
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Start runs the hub until ctx ends and serves until Shutdown is called.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	s.logger.Info("WebSocket server listening", "port", s.port)
	return s.server.ListenAndServe()
}

// handleSession upgrades the connection and starts a session
func (s *Server) handleSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := NewClient(uuid.NewString(), conn, s.hub, s.eval)
	s.hub.Register(client)

	client.TrySend(ServerMessage{
		Type:      TypeSession,
		Payload:   SessionInfo{ClientID: client.ID},
		Timestamp: time.Now(),
	})

	go client.WritePump()
	go client.ReadPump(ctx)
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
	})
}

// Shutdown ends open sessions and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.server.Shutdown(ctx)
}
