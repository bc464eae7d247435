package protocol

import (
	json "github.com/goccy/go-json"

	"github.com/dkeye/Watch/internal/domain"
)

type RoomData struct {
	Type string           `json:"type"`
	Room *domain.RoomInfo `json:"room"`
}

func NewRoomData(info *domain.RoomInfo) RoomData {
	return RoomData{Type: TypeRoomData, Room: info}
}

type PresenceUpdate struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	Members []string      `json:"members"`
}

func NewPresenceUpdate(room domain.RoomID, members []string) PresenceUpdate {
	if members == nil {
		members = []string{}
	}
	return PresenceUpdate{Type: TypePresenceUpdate, RoomID: room, Members: members}
}

type RequestVideoState struct {
	Type     string `json:"type"`
	JoinerID string `json:"joinerId"`
}

func NewRequestVideoState(joiner string) RequestVideoState {
	return RequestVideoState{Type: TypeRequestVideoState, JoinerID: joiner}
}

type PeerStateDeliver struct {
	Type       string          `json:"type"`
	VideoState json.RawMessage `json:"videoState"`
	OriginID   string          `json:"originId"`
}

func NewPeerStateDeliver(state json.RawMessage, origin string) PeerStateDeliver {
	return PeerStateDeliver{Type: TypePeerStateDeliver, VideoState: state, OriginID: origin}
}

type PlaybackUpdate struct {
	Type      string        `json:"type"`
	Action    domain.Action `json:"action"`
	Position  float64       `json:"position"`
	OriginID  string        `json:"originId"`
	Timestamp int64         `json:"timestamp"`
}

func NewPlaybackUpdate(s domain.PlaybackState) PlaybackUpdate {
	return PlaybackUpdate{
		Type:      TypePlaybackUpdate,
		Action:    s.Action,
		Position:  s.Position,
		OriginID:  s.Origin,
		Timestamp: s.CapturedAt,
	}
}

type SeekUpdate struct {
	Type      string  `json:"type"`
	Position  float64 `json:"position"`
	OriginID  string  `json:"originId"`
	Timestamp int64   `json:"timestamp"`
}

func NewSeekUpdate(s domain.PlaybackState) SeekUpdate {
	return SeekUpdate{
		Type:      TypeSeekUpdate,
		Position:  s.Position,
		OriginID:  s.Origin,
		Timestamp: s.CapturedAt,
	}
}

// ForceSync is a private corrective directive. CapturedAt is the capture
// time Position refers to; Timestamp is when the server sent it.
type ForceSync struct {
	Type       string        `json:"type"`
	Position   float64       `json:"position"`
	Action     domain.Action `json:"action"`
	Timestamp  int64         `json:"timestamp"`
	CapturedAt int64         `json:"capturedAt"`
}

func NewForceSync(action domain.Action, position float64, capturedAt, now int64) ForceSync {
	return ForceSync{
		Type:       TypeForceSync,
		Position:   position,
		Action:     action,
		Timestamp:  now,
		CapturedAt: capturedAt,
	}
}

type NewVideo struct {
	Type     string         `json:"type"`
	VideoID  domain.VideoID `json:"videoId"`
	OriginID string         `json:"originId"`
}

func NewNewVideo(id domain.VideoID, origin string) NewVideo {
	return NewVideo{Type: TypeNewVideo, VideoID: id, OriginID: origin}
}

type PlayNextVideo struct {
	Type    string         `json:"type"`
	VideoID domain.VideoID `json:"videoId"`
}

func NewPlayNextVideo(id domain.VideoID) PlayNextVideo {
	return PlayNextVideo{Type: TypePlayNextVideo, VideoID: id}
}

type QueueUpdated struct {
	Type       string               `json:"type"`
	Queue      []domain.QueuedVideo `json:"queue"`
	NowPlaying domain.VideoID       `json:"nowPlaying,omitempty"`
}

func NewQueueUpdated(queue []domain.QueuedVideo, now domain.VideoID) QueueUpdated {
	if queue == nil {
		queue = []domain.QueuedVideo{}
	}
	return QueueUpdated{Type: TypeQueueUpdated, Queue: queue, NowPlaying: now}
}

type Left struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

func NewLeft(room domain.RoomID) Left {
	return Left{Type: TypeLeft, RoomID: room}
}

type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong { return Pong{Type: TypePong} }

type WhoAmI struct {
	Type     string        `json:"type"`
	ID       string        `json:"id"`
	Username string        `json:"username,omitempty"`
	Room     domain.RoomID `json:"room,omitempty"`
}

func NewWhoAmI(id, username string, room domain.RoomID) WhoAmI {
	return WhoAmI{Type: TypeWhoAmI, ID: id, Username: username, Room: room}
}
