package session

import (
	"context"
	"sync"
)

// MemoryStore keeps session state in a map. Used in tests and single-node dev
// runs; state does not survive a process restart.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) Load(_ context.Context, deviceID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[deviceID], nil
}

func (s *MemoryStore) Save(_ context.Context, deviceID string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[deviceID] = st
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, deviceID)
	return nil
}
