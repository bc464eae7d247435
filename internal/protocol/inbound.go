package protocol

import (
	json "github.com/goccy/go-json"
)

type roomRef struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type JoinRoom struct {
	RoomID      string `json:"roomId" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"required"`
}

type LeaveRoom struct {
	roomRef
}

type PeerStateOffer struct {
	roomRef
	VideoState json.RawMessage `json:"videoState" validate:"required"`
	// Target optionally names the joiner the offer answers.
	Target string `json:"target,omitempty"`
}

// ControlChange is the single canonical play/pause event.
type ControlChange struct {
	roomRef
	Action    string   `json:"action" validate:"required,oneof=playing paused play pause"`
	Position  *float64 `json:"position" validate:"required,gte=0"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

type Seek struct {
	roomRef
	Position  *float64 `json:"position" validate:"required,gte=0"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

type ProgressReport struct {
	roomRef
	Position  *float64 `json:"position" validate:"required,gte=0"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

type ResyncRequest struct {
	roomRef
}

type VideoAdded struct {
	roomRef
	VideoID string `json:"videoId" validate:"required,max=256"`
}

type QueueItem struct {
	VideoID string `json:"videoId" validate:"required,max=256"`
	Title   string `json:"title,omitempty" validate:"max=512"`
}

type AddToQueue struct {
	roomRef
	Video QueueItem `json:"video"`
}

type RemoveFromQueue struct {
	roomRef
	Index *int `json:"index" validate:"required,gte=0"`
}

type PlayFromQueue struct {
	roomRef
	VideoID string `json:"videoId" validate:"required,max=256"`
}

// VideoEnded reports the end of VideoID; when empty the room's current
// video is assumed.
type VideoEnded struct {
	roomRef
	VideoID string `json:"videoId,omitempty" validate:"max=256"`
}
