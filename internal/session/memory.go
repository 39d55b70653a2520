package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. One writer at a time.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]State
	listeners listeners
	now       func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]State),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, state State) error {
	m.mu.Lock()
	m.sessions[state.ID] = state
	m.mu.Unlock()

	m.listeners.notify(Change{Kind: ChangeSaved, SessionID: state.ID, State: &state})
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if state.Expired(m.now()) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return &state, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	_, existed := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if existed {
		m.listeners.notify(Change{Kind: ChangeDeleted, SessionID: id})
	}
	return nil
}

func (m *MemoryStore) Subscribe(listener Listener) func() {
	return m.listeners.add(listener)
}
