package app

import (
	"sync"

	"github.com/dkeye/Watch/internal/domain"
)

// StateStore holds the authoritative playback state per room.
// Writers for a given room must hold that room's lock (see RoomManager);
// the store's own mutex only guards the map.
type StateStore struct {
	mu     sync.RWMutex
	states map[domain.RoomID]domain.PlaybackState
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[domain.RoomID]domain.PlaybackState)}
}

func (s *StateStore) Get(room domain.RoomID) (domain.PlaybackState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[room]
	return st, ok
}

func (s *StateStore) Replace(room domain.RoomID, st domain.PlaybackState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[room] = st
}

// MergePosition applies a pure seek. The action is kept; a room without
// state is seeded as paused so no playback is implied.
func (s *StateStore) MergePosition(room domain.RoomID, position float64, capturedAt int64, origin string) domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[room]
	if !ok {
		st.Action = domain.ActionPaused
	}
	st.Position = position
	st.CapturedAt = capturedAt
	st.Origin = origin
	s.states[room] = st
	return st
}

func (s *StateStore) Delete(room domain.RoomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.states[room]
	delete(s.states, room)
	return ok
}

func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
