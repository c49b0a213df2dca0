package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store holds live sessions keyed by UUID.
type Store struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	cfg      Config
	sessions map[uuid.UUID]*Session
}

// NewStore creates an empty session store; cfg applies to every created
// session.
func NewStore(cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create builds and registers a new session.
func (st *Store) Create() *Session {
	s := New(st.cfg, st.logger)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	st.logger.Info("Session created", zap.String("session_id", s.ID.String()))
	return s
}

// GetOrCreate returns the session, registering a fresh one under the
// given ID when absent. Stream consumers receive IDs minted elsewhere.
func (st *Store) GetOrCreate(id uuid.UUID) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := NewWithID(id, st.cfg, st.logger)
	st.sessions[id] = s
	st.logger.Info("Session adopted", zap.String("session_id", id.String()))
	return s
}

// Get returns the session, or nil and false.
func (st *Store) Get(id uuid.UUID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete closes and removes the session. Returns whether it existed.
func (st *Store) Delete(id uuid.UUID) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if ok {
		s.Close()
		st.logger.Info("Session deleted", zap.String("session_id", id.String()))
	}
	return ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep closes and removes sessions idle longer than maxIdle. Returns
// the number evicted.
func (st *Store) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.IdleFor() > maxIdle {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.Close()
		st.logger.Info("Idle session evicted",
			zap.String("session_id", s.ID.String()),
			zap.Duration("idle", s.IdleFor()))
	}
	return len(stale)
}
