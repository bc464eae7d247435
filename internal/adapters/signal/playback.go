package signal

import (
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

func (ctl *SignalWSController) handleControlChange(sid core.SessionID, data []byte) {
	var p protocol.ControlChange
	if !ctl.decode(sid, protocol.TypeControlChange, data, &p) {
		return
	}
	ctl.Orch.ControlChange(sid, domain.RoomID(p.RoomID), p.Action, *p.Position, p.Timestamp)
}

func (ctl *SignalWSController) handleSeek(sid core.SessionID, data []byte) {
	var p protocol.Seek
	if !ctl.decode(sid, protocol.TypeSeek, data, &p) {
		return
	}
	ctl.Orch.Seek(sid, domain.RoomID(p.RoomID), *p.Position, p.Timestamp)
}

func (ctl *SignalWSController) handleProgressReport(sid core.SessionID, data []byte) {
	var p protocol.ProgressReport
	if !ctl.decode(sid, protocol.TypeProgressReport, data, &p) {
		return
	}
	ctl.Orch.ProgressReport(sid, domain.RoomID(p.RoomID), *p.Position, p.Timestamp)
}

func (ctl *SignalWSController) handleResyncRequest(sid core.SessionID, data []byte) {
	var p protocol.ResyncRequest
	if !ctl.decode(sid, protocol.TypeResyncRequest, data, &p) {
		return
	}
	ctl.Orch.ResyncRequest(sid, domain.RoomID(p.RoomID))
}

func (ctl *SignalWSController) handlePeerStateOffer(sid core.SessionID, data []byte) {
	var p protocol.PeerStateOffer
	if !ctl.decode(sid, protocol.TypePeerStateOffer, data, &p) {
		return
	}
	ctl.Orch.PeerStateOffer(sid, domain.RoomID(p.RoomID), p.VideoState, core.SessionID(p.Target))
}
