package app

import (
	"sync"

	"github.com/dkeye/Watch/internal/domain"
)

type roomCell struct {
	mu   sync.Mutex
	refs int
}

// RoomManager serializes work per room: every handler that mutates a
// room's playback state, queue or membership runs under Lock(room).
// Cells are reference counted so idle rooms do not leak.
type RoomManager struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*roomCell
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*roomCell)}
}

// Lock blocks until the caller is the single writer of room and returns
// the matching unlock.
func (m *RoomManager) Lock(room domain.RoomID) (unlock func()) {
	m.mu.Lock()
	cell, ok := m.rooms[room]
	if !ok {
		cell = &roomCell{}
		m.rooms[room] = cell
	}
	cell.refs++
	m.mu.Unlock()

	cell.mu.Lock()
	return func() {
		cell.mu.Unlock()
		m.mu.Lock()
		cell.refs--
		if cell.refs == 0 {
			delete(m.rooms, room)
		}
		m.mu.Unlock()
	}
}

// Active reports how many rooms currently have a holder or waiter.
func (m *RoomManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
