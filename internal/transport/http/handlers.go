// Package http holds the read-only REST introspection handlers.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

// RoomReader is the read side of the session lifecycle manager.
type RoomReader interface {
	Summaries() []core.RoomSummary
	Members(room domain.RoomID) []string
	Playback(room domain.RoomID) (domain.PlaybackState, bool)
	ConnectionCount() int
}

type RoomsResponse struct {
	Rooms []core.RoomSummary `json:"rooms"`
}

type MembersResponse struct {
	RoomID  domain.RoomID `json:"roomId"`
	Members []string      `json:"members"`
}

type StateResponse struct {
	RoomID domain.RoomID `json:"roomId"`
	domain.PlaybackState
}

type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

type Handlers struct {
	Rooms RoomReader
}

func NewHandlers(rooms RoomReader) *Handlers {
	return &Handlers{Rooms: rooms}
}

func (h *Handlers) Register(api gin.IRouter) {
	api.GET("/rooms", h.handleRooms)
	api.GET("/rooms/:id/members", h.handleMembers)
	api.GET("/rooms/:id/state", h.handleState)
}

func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Connections: h.Rooms.ConnectionCount()})
}

func (h *Handlers) handleRooms(c *gin.Context) {
	rooms := h.Rooms.Summaries()
	if rooms == nil {
		rooms = []core.RoomSummary{}
	}
	c.JSON(http.StatusOK, RoomsResponse{Rooms: rooms})
}

func (h *Handlers) handleMembers(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))
	members := h.Rooms.Members(room)
	if members == nil {
		members = []string{}
	}
	c.JSON(http.StatusOK, MembersResponse{RoomID: room, Members: members})
}

func (h *Handlers) handleState(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))
	st, ok := h.Rooms.Playback(room)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no playback state"})
		return
	}
	c.JSON(http.StatusOK, StateResponse{RoomID: room, PlaybackState: st})
}
