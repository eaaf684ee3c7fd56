package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/nosmoke/coachbot/bot/onboarding"
)

// Memory is a map-backed Store used in tests and local runs.
// State is deep-copied on both paths so callers never alias the
// stored record.
type Memory struct {
	mu     sync.RWMutex
	states map[int64]*onboarding.UserState
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{states: make(map[int64]*onboarding.UserState)}
}

// Get returns a copy of the stored state or ErrNotFound.
func (m *Memory) Get(_ context.Context, userID int64) (*onboarding.UserState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

// Put replaces the stored state for userID.
func (m *Memory) Put(_ context.Context, userID int64, st *onboarding.UserState) error {
	if st == nil {
		return fmt.Errorf("storage: nil state for user %d", userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st.Clone()
	return nil
}
