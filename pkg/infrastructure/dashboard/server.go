// Package dashboard serves the web view of the computed project insights.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/niksavis/burndown-chart/pkg/domain/project"
)

//go:embed templates/*
var templatesFS embed.FS

// SnapshotProvider computes a fresh dashboard snapshot on demand.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*project.Snapshot, error)
}

// Server is the dashboard HTTP server. Connected websocket clients receive a
// freshly computed snapshot whenever Broadcast is invoked, typically from the
// workspace watcher.
type Server struct {
	addr     string
	provider SnapshotProvider
	server   *http.Server
	tmpl     *template.Template
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// wsClient is one connected websocket browser. All writes to the connection
// go through send and are performed by a single writePump goroutine; gorilla
// connections do not support concurrent writers.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) writePump() {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// NewServer creates a new dashboard server.
func NewServer(addr string, provider SnapshotProvider) (*Server, error) {
	funcMap := template.FuncMap{
		"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"points":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		addr:     addr,
		provider: provider,
		tmpl:     tmpl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*wsClient]struct{}),
	}, nil
}

// Start starts the dashboard server and blocks until it stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/snapshot", s.handleAPISnapshot)
	mux.HandleFunc("GET /ws", s.handleWS)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Dashboard server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for client := range s.clients {
		close(client.send)
		_ = client.conn.Close()
	}
	s.clients = make(map[*wsClient]struct{})
	s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// PageData holds data for template rendering.
type PageData struct {
	Title    string
	Snapshot *project.Snapshot
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Project Health"}

	snapshot, err := s.provider.Snapshot(r.Context())
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Snapshot = snapshot
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("render index: %v", err)
	}
}

func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.provider.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		log.Printf("encode snapshot: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 8)}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	go client.writePump()

	// Queue the current state immediately so a fresh client never renders
	// an empty dashboard. Going through send keeps the write pump the only
	// writer even when a Broadcast fires during the handshake.
	if snapshot, err := s.provider.Snapshot(r.Context()); err == nil {
		if data, err := json.Marshal(snapshot); err == nil {
			s.enqueue(client, data)
		}
	}

	// Read loop exists only to detect the client going away.
	go func() {
		defer s.dropClient(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// enqueue hands a message to the client's write pump. A client whose buffer
// is full is dropped rather than allowed to stall the caller.
func (s *Server) enqueue(client *wsClient, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		delete(s.clients, client)
		close(client.send)
	}
}

func (s *Server) dropClient(client *wsClient) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
	s.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast recomputes the snapshot and pushes it to every connected
// websocket client. Slow or broken clients are dropped.
func (s *Server) Broadcast(ctx context.Context) error {
	snapshot, err := s.provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("compute snapshot: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		s.enqueue(client, data)
	}
	return nil
}

// ClientCount reports the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
