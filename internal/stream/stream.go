package stream

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/ride-ledger/internal/events"
	"github.com/example/ride-ledger/internal/models"
)

// Session is one connected observer.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *Session) send(env events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(env)
}

// Registry holds observer sessions and broadcasts every committed ledger
// event to all of them. Sessions that fail a write are dropped.
type Registry struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{sessions: make(map[*Session]struct{}), logger: logger}
}

func (r *Registry) Add(conn *websocket.Conn) *Session {
	s := &Session{conn: conn}
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	r.mu.Unlock()
	return s
}

func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
	_ = s.conn.Close()
}

func (r *Registry) Emit(ev models.Event) {
	env, err := events.Wrap(ev)
	if err != nil {
		r.logger.Error("event marshal failed", "event", ev.EventName(), "error", err)
		return
	}
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()
	for _, s := range sessions {
		if err := s.send(env); err != nil {
			r.logger.Warn("observer dropped", "error", err)
			r.Remove(s)
		}
	}
}
