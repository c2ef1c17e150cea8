// internal/store/memory.go
//
// In-memory session store for puzzle rounds.
// Each learner owns one Session holding a *puzzle.Engine; the HTTP adapter
// looks sessions up by the id carried in the session token.
//
// Characteristics:
//   - Sessions keyed by a random UUID in a map guarded by an RWMutex.
//   - Each Session serializes access to its engine with its own mutex.
//   - Idle sessions expire after a TTL; a janitor goroutine sweeps them.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pierridotite/QGISGame/internal/puzzle"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for learner sessions.
type Store interface {
	// Create registers a new session around e.
	Create(ctx context.Context, e *puzzle.Engine) (*Session, error)

	// Get retrieves a live session by id and refreshes its expiry.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete drops a session. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error

	// Len reports the number of live sessions.
	Len() int
}

// Session is one learner's round state.
type Session struct {
	ID string

	mu       sync.Mutex
	engine   *puzzle.Engine
	lastSeen time.Time
}

// Run calls fn with exclusive access to the session engine.
func (s *Session) Run(fn func(e *puzzle.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// Memory is a map-based Store with idle expiry.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewMemoryStore constructs a Memory store. When ttl is positive a janitor
// goroutine removes sessions idle longer than ttl every sweep interval;
// call Close to stop it.
func NewMemoryStore(ttl, sweep time.Duration) *Memory {
	m := &Memory{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if ttl > 0 && sweep > 0 {
		go m.janitor(sweep)
	} else {
		close(m.done)
	}
	return m
}

// Create adds a session with a fresh id.
func (m *Memory) Create(ctx context.Context, e *puzzle.Engine) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &Session{ID: uuid.NewString(), engine: e}

	m.mu.Lock()
	defer m.mu.Unlock()
	s.lastSeen = m.now()
	m.sessions[s.ID] = s
	return s, nil
}

// Get looks up a session. Expired sessions are removed and reported as
// ErrNotFound even before the janitor reaches them.
func (m *Memory) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if m.expired(s, now) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	s.lastSeen = now
	return s, nil
}

// Delete removes a session.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the live session count.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Close stops the janitor and waits for it to exit.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

func (m *Memory) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.lastSeen) > m.ttl
}

func (m *Memory) janitor(every time.Duration) {
	defer close(m.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
