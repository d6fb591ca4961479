// Package session tracks the live game sessions and serializes access to
// their state.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/content"
	"github.com/dungeonmaister/gameserver/internal/game/state"
)

// CreationProgress is an in-flight character in the creation wizard. The
// character accumulates choices step by step until finalized.
type CreationProgress struct {
	Character *character.Character
	Step      content.Step
	// KingdomID scopes later choices; recorded at the kingdom step.
	KingdomID string
}

// Session is one running game, owned by a single connection at a time but
// safe against concurrent handlers.
type Session struct {
	// ID is the session identifier handed to the client.
	ID string
	// CreatedAt is when the session was opened.
	CreatedAt time.Time
	// State is the current game snapshot. nil until character creation
	// finalizes and the first map is generated.
	State *state.GameState
	// Creation holds per-character creation progress, keyed by character id.
	Creation map[string]*CreationProgress

	// mu serializes all access to the fields above. Held via Manager.Do.
	mu sync.Mutex
}

// ErrNotFound is returned by Do when no session exists for the given id.
// Callers distinguish it from errors raised inside fn with errors.Is.
var ErrNotFound = errors.New("session not found")

// Manager tracks all active sessions. All methods are safe for concurrent
// use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers a new session under the given id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns an error if the id is already registered.
func (m *Manager) Create(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session: id must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session: %q already exists", id)
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Creation:  make(map[string]*CreationProgress),
	}
	m.sessions[id] = s
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Do runs fn with the session locked. Every state-mutating handler goes
// through Do so concurrent events on the same session cannot interleave.
// fn must not call back into Do for the same session.
//
// Postcondition: Returns an error if the session does not exist, otherwise
// fn's error.
func (m *Manager) Do(id string, fn func(*Session) error) error {
	s, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Remove drops a session. Removing an unknown id is a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
