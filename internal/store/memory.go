// internal/store/memory.go
//
// In-memory session store.
//
// Characteristics:
//   - Holds one *Session per player session, keyed by a UUID.
//   - Map access is guarded by an RWMutex; each Session has its own mutex so
//     operations on one game are serialized without blocking other games.
//   - Events a game emits during Session.Do are buffered and handed back to
//     the caller, so a request sees exactly the events it caused.
//   - Idle sessions are evicted by Sweep; state is lost on restart.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/turing/internal/game"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the session registry.
type Store interface {
	// Create registers g under a fresh id.
	Create(ctx context.Context, g *game.Game) (*Session, error)

	// Get retrieves a session by id.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions untouched for longer than idle and returns how many.
	Sweep(ctx context.Context, idle time.Duration) int

	// Len reports the number of live sessions.
	Len() int
}

// Session pairs a Game with the mutex that serializes access to it.
type Session struct {
	ID string

	mu       sync.Mutex
	game     *game.Game
	pending  []game.Event
	lastUsed time.Time
	now      func() time.Time
}

// Do runs fn with exclusive access to the game and returns the events fn
// caused, in order.
func (s *Session) Do(fn func(g *game.Game) error) ([]game.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = s.pending[:0]
	err := fn(s.game)
	events := append([]game.Event(nil), s.pending...)
	s.lastUsed = s.now()
	return events, err
}

// View runs fn with exclusive access and no event capture.
func (s *Session) View(fn func(g *game.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return newMemory(time.Now)
}

func newMemory(now func() time.Time) *memory {
	return &memory{sessions: make(map[string]*Session), now: now}
}

// Create wraps g in a Session and subscribes the event buffer to it.
func (m *memory) Create(ctx context.Context, g *game.Game) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.NewString(),
		game:     g,
		lastUsed: m.now(),
		now:      m.now,
	}
	// pending is only touched under s.mu (inside Do)
	g.Subscribe(func(e game.Event) { s.pending = append(s.pending, e) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s, nil
}

// Get looks up a session by id.
func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Delete removes a session.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep evicts idle sessions.
func (m *memory) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range stale {
		delete(m.sessions, id)
	}
	return len(stale)
}

// Len reports the number of sessions.
func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, st Store, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(ctx, idle); n > 0 {
				log.Info().Int("evicted", n).Int("live", st.Len()).Msg("swept idle sessions")
			}
		}
	}
}
