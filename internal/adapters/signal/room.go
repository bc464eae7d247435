package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, data []byte) {
	var p protocol.JoinRoom
	if !ctl.decode(sid, protocol.TypeJoinRoom, data, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("join")
	_ = ctl.Orch.JoinRoom(ctx, sid, domain.RoomID(p.RoomID), p.DisplayName)
}

// handleLeave leaves the room; the connection itself stays open.
func (ctl *SignalWSController) handleLeave(sid core.SessionID, data []byte) {
	var p protocol.LeaveRoom
	if !ctl.decode(sid, protocol.TypeLeaveRoom, data, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("leave")
	ctl.Orch.LeaveRoom(sid, domain.RoomID(p.RoomID))
}
