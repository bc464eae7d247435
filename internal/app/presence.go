package app

import (
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

// Presence recomputes a room's member list and sends the full list to
// every current member.
type Presence struct {
	Registry *Registry
	Out      core.Outbound
}

func NewPresence(reg *Registry, out core.Outbound) *Presence {
	return &Presence{Registry: reg, Out: out}
}

func (p *Presence) Broadcast(room domain.RoomID) core.PublishResult {
	members := p.Registry.MembersOf(room)
	return p.Out.ToRoom(room, "", protocol.NewPresenceUpdate(room, members))
}
