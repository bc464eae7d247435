package core

import (
	"context"
	"errors"

	"github.com/dkeye/Watch/internal/domain"
)

var ErrRoomNotFound = errors.New("room not found")

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// Outbound is the fan-out surface the sync engine talks to.
// ToRoom never delivers to except; pass "" to reach everyone.
type Outbound interface {
	ToRoom(room domain.RoomID, except SessionID, msg any) PublishResult
	ToSession(sid SessionID, msg any) error
}

// RoomSummary is a read-only view for APIs (no transport fields).
type RoomSummary struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
	HasPlayback bool          `json:"hasPlayback"`
	NowPlaying  string        `json:"nowPlaying,omitempty"`
}

//go:generate go run go.uber.org/mock/mockgen -source=room_iface.go -destination=../mocks/mock_room_directory.go -package=mocks

// RoomDirectory is the read-only lookup into the external room records.
// Implementations return ErrRoomNotFound for unknown ids.
type RoomDirectory interface {
	Lookup(ctx context.Context, id domain.RoomID) (*domain.RoomInfo, error)
}
