// Package directory implements core.RoomDirectory over the external room
// records: a config-seeded table for development and PostgreSQL in
// production.
package directory

import (
	"context"
	"sync"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

// Static serves room records held in memory.
type Static struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]domain.RoomInfo
}

func NewStatic(rooms ...domain.RoomInfo) *Static {
	s := &Static{rooms: make(map[domain.RoomID]domain.RoomInfo, len(rooms))}
	for _, r := range rooms {
		s.Put(r)
	}
	return s
}

func (s *Static) Put(info domain.RoomInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[info.ID] = info
}

func (s *Static) Lookup(ctx context.Context, id domain.RoomID) (*domain.RoomInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	info.InvitedUsers = append([]string(nil), info.InvitedUsers...)
	return &info, nil
}
