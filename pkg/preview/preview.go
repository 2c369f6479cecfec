// Package preview serves a tiny live-reload HTTP server: a page
// rendering one template against a binding the user supplies as JSON,
// plus a WebSocket endpoint whose clients receive a "reload" message each
// time BroadcastReload is called. Nothing in this module calls
// BroadcastReload, so a library reload by pkg/watch sends no message.
//
// Grounded on the teacher's pkg/server/server.go (a Server struct
// holding an *http.Server plus a functional-option constructor) and
// pkg/websocket/server.go (a hub pattern broadcasting to every
// connected client), trimmed from the teacher's general-purpose
// room/event hub down to the one thing a dev preview server needs:
// broadcast-to-all-clients on reload.
package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/fae-lang/fae/pkg/binding"
	"github.com/fae-lang/fae/pkg/logging"
)

// Renderer is the subset of *library.Library preview needs.
type Renderer interface {
	Render(ctx context.Context, templateName string, b binding.Binding) (string, error)
}

// Server is the live preview HTTP+WebSocket server.
type Server struct {
	addr   string
	lib    Renderer
	logger *logging.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option { return func(s *Server) { s.logger = l } }

// New builds a preview Server listening on addr, serving templates
// through lib.
func New(addr string, lib Renderer, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		lib:     lib,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/render/", s.handleRender)
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving HTTP until the server errors or is shut
// down via Shutdown.
func (s *Server) ListenAndServe() error {
	if s.logger != nil {
		s.logger.InfoWithFields("preview server listening", map[string]interface{}{"addr": s.addr})
	}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleRender renders the template named by the URL path past
// "/render/" against the JSON object in the request body, writing the
// rendered text as the response.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/render/"):]
	if name == "" {
		http.Error(w, "missing template name", http.StatusBadRequest)
		return
	}

	var raw map[string]interface{}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err.Error() != "EOF" {
			http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	b := binding.New()
	for k, v := range raw {
		b = b.With(k, toValue(v))
	}

	out, err := s.lib.Render(r.Context(), name, b)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(out))
}

func toValue(v interface{}) binding.Value {
	switch t := v.(type) {
	case bool:
		return binding.Bool{V: t}
	case float64:
		return binding.Float{V: t}
	case string:
		return binding.String{V: t}
	case []interface{}:
		items := make([]binding.Value, len(t))
		for i, e := range t {
			items[i] = toValue(e)
		}
		return binding.Container{Items: items}
	default:
		return binding.String{V: ""}
	}
}

// handleWS upgrades the connection and registers it to receive
// broadcast reload notifications until it disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastReload pushes a reload notification to every connected
// client. cmd/fae does not call it; pkg/watch reloads the library only.
func (s *Server) BroadcastReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"reload"}`)); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
