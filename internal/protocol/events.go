// Package protocol defines the signaling wire format: a flat JSON object
// whose "type" field names the event.
package protocol

// Inbound event types.
const (
	TypeJoinRoom        = "join-room"
	TypeLeaveRoom       = "leave-room"
	TypePeerStateOffer  = "peer-state-offer"
	TypeControlChange   = "control-change"
	TypeSeek            = "seek"
	TypeProgressReport  = "progress-report"
	TypeResyncRequest   = "resync-request"
	TypeVideoAdded      = "video-added"
	TypeAddToQueue      = "add-to-queue"
	TypeRemoveFromQueue = "remove-from-queue"
	TypePlayFromQueue   = "play-from-queue"
	TypeVideoEnded      = "video-ended"
	TypePing            = "ping"
	TypeWhoAmI          = "whoami"
)

// Outbound event types.
const (
	TypeRoomData          = "room-data"
	TypePresenceUpdate    = "presence-update"
	TypeRequestVideoState = "request-video-state"
	TypePeerStateDeliver  = "peer-state-deliver"
	TypePlaybackUpdate    = "playback-update"
	TypeSeekUpdate        = "seek-update"
	TypeForceSync         = "force-sync"
	TypeNewVideo          = "new-video"
	TypePlayNextVideo     = "play-next-video"
	TypeQueueUpdated      = "queue-updated"
	TypeLeft              = "left"
	TypePong              = "pong"
)
