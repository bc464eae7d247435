package signal

import (
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

func (ctl *SignalWSController) handleVideoAdded(sid core.SessionID, data []byte) {
	var p protocol.VideoAdded
	if !ctl.decode(sid, protocol.TypeVideoAdded, data, &p) {
		return
	}
	ctl.Orch.VideoAdded(sid, domain.RoomID(p.RoomID), domain.VideoID(p.VideoID))
}

func (ctl *SignalWSController) handleAddToQueue(sid core.SessionID, data []byte) {
	var p protocol.AddToQueue
	if !ctl.decode(sid, protocol.TypeAddToQueue, data, &p) {
		return
	}
	ctl.Orch.AddToQueue(sid, domain.RoomID(p.RoomID), domain.VideoID(p.Video.VideoID), p.Video.Title)
}

func (ctl *SignalWSController) handleRemoveFromQueue(sid core.SessionID, data []byte) {
	var p protocol.RemoveFromQueue
	if !ctl.decode(sid, protocol.TypeRemoveFromQueue, data, &p) {
		return
	}
	ctl.Orch.RemoveFromQueue(sid, domain.RoomID(p.RoomID), *p.Index)
}

func (ctl *SignalWSController) handlePlayFromQueue(sid core.SessionID, data []byte) {
	var p protocol.PlayFromQueue
	if !ctl.decode(sid, protocol.TypePlayFromQueue, data, &p) {
		return
	}
	ctl.Orch.PlayFromQueue(sid, domain.RoomID(p.RoomID), domain.VideoID(p.VideoID))
}

func (ctl *SignalWSController) handleVideoEnded(sid core.SessionID, data []byte) {
	var p protocol.VideoEnded
	if !ctl.decode(sid, protocol.TypeVideoEnded, data, &p) {
		return
	}
	ctl.Orch.VideoEnded(sid, domain.RoomID(p.RoomID), domain.VideoID(p.VideoID))
}
