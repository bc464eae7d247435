package domain

type RoomID string

// RoomInfo is the externally owned directory record of a room.
type RoomInfo struct {
	ID           RoomID   `json:"id"`
	RoomName     string   `json:"roomName"`
	CreatedBy    string   `json:"createdBy"`
	InvitedUsers []string `json:"invitedUsers"`
}
