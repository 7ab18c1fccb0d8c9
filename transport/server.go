package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/noodles-run/noodles-server/engine"
	"github.com/noodles-run/noodles-server/types"
)

// upgrader accepts WebSocket connections from any origin - NOODLES clients
// are typically native applications or local tooling, not browser pages
// subject to same-origin policy, matching rigatoni's websockets.serve which
// performs no origin check either.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EngineScene is the subset of *engine.Scene the connection loop drives.
// Declaring it as an interface keeps transport independent of engine's
// internal Submit/Run plumbing - callers pass a *engine.Scene, which
// satisfies it directly.
type EngineScene interface {
	HandleInvoke(raw map[string]any) types.Reply
	Introduce() engine.Frame
}

// Scene adapts an EngineScene plus the set of connected clients into what
// conn needs, and is itself the engine.Broadcaster the scene calls back
// into - the same dual role rigatoni.core.Server plays for its own
// self.clients set.
type Scene struct {
	engine EngineScene
	log    types.Logger

	mu      sync.Mutex
	clients map[*conn]bool
}

// NewScene wraps scene for transport use. scene may be nil and supplied
// later via BindEngine - needed because *engine.Scene's constructor itself
// requires an engine.Broadcaster, so the two must be built in two steps
// when, as usual, each is the other's only collaborator. log may be nil, in
// which case types.DefaultLogger() is used.
func NewScene(scene EngineScene, log types.Logger) *Scene {
	if log == nil {
		log = types.DefaultLogger()
	}
	return &Scene{engine: scene, log: log, clients: make(map[*conn]bool)}
}

// BindEngine attaches scene as the EngineScene driving this transport Scene,
// completing the two-step construction NewScene(nil, log) started.
func (s *Scene) BindEngine(scene EngineScene) {
	s.engine = scene
}

func (s *Scene) logger() types.Logger { return s.log }

func (s *Scene) handleInvoke(raw map[string]any) types.Reply { return s.engine.HandleInvoke(raw) }

func (s *Scene) introduce() engine.Frame { return s.engine.Introduce() }

func (s *Scene) addClient(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = true
}

func (s *Scene) removeClient(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// Broadcast implements engine.Broadcaster: send frame to every connected
// client, dropping (and closing) any connection whose write fails -
// the Go equivalent of websockets.broadcast(self.clients, encoded).
func (s *Scene) Broadcast(frame engine.Frame) {
	s.mu.Lock()
	targets := make([]*conn, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(frame); err != nil {
			s.log.Warnf("dropping client %q: %v", c.name, err)
			s.removeClient(c)
			c.close()
		}
	}
}

// Handler returns an http.Handler that upgrades every request to a
// WebSocket and runs the §4.9 connection lifecycle on it, suitable for
// mounting at any path via http.ServeMux - the Go equivalent of
// websockets.serve's connection handler, but layered over net/http so it
// composes with bytehost's HTTP server under the same mux (SPEC_FULL §C.7).
func (s *Scene) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Errorf("websocket upgrade failed: %v", err)
			return
		}
		c := newConn(ws)
		s.addClient(c)

		if err := c.handshake(s); err != nil {
			s.log.Warnf("handshake failed: %v", err)
			s.removeClient(c)
			c.close()
			return
		}
		c.serve(s)
	})
}
