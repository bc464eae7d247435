package orch

import (
	json "github.com/goccy/go-json"

	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

func (o *Orchestrator) ControlChange(sid core.SessionID, room domain.RoomID, action string, position float64, ts int64) {
	act, err := domain.ParseAction(action)
	if err != nil {
		o.drop(sid, protocol.TypeControlChange, app.ReasonMalformed, err)
		return
	}
	if err := domain.ValidatePosition(position); err != nil {
		o.drop(sid, protocol.TypeControlChange, app.ReasonMalformed, err)
		return
	}
	unlock, ok := o.member(sid, room, protocol.TypeControlChange)
	if !ok {
		return
	}
	defer unlock()
	o.applyPolicy(room, o.Reconciler.ControlChange(room, sid, act, position, ts))
}

func (o *Orchestrator) Seek(sid core.SessionID, room domain.RoomID, position float64, ts int64) {
	if err := domain.ValidatePosition(position); err != nil {
		o.drop(sid, protocol.TypeSeek, app.ReasonMalformed, err)
		return
	}
	unlock, ok := o.member(sid, room, protocol.TypeSeek)
	if !ok {
		return
	}
	defer unlock()
	o.applyPolicy(room, o.Reconciler.Seek(room, sid, position, ts))
}

// ProgressReport returns true when a force-sync was sent to sid.
func (o *Orchestrator) ProgressReport(sid core.SessionID, room domain.RoomID, position float64, ts int64) bool {
	if err := domain.ValidatePosition(position); err != nil {
		o.drop(sid, protocol.TypeProgressReport, app.ReasonMalformed, err)
		return false
	}
	unlock, ok := o.member(sid, room, protocol.TypeProgressReport)
	if !ok {
		return false
	}
	defer unlock()
	return o.Reconciler.Progress(room, sid, position, ts)
}

func (o *Orchestrator) ResyncRequest(sid core.SessionID, room domain.RoomID) bool {
	unlock, ok := o.member(sid, room, protocol.TypeResyncRequest)
	if !ok {
		return false
	}
	defer unlock()
	return o.Reconciler.Resync(room, sid)
}

// PeerStateOffer forwards a member's live player state to the joiner(s)
// waiting for it.
func (o *Orchestrator) PeerStateOffer(sid core.SessionID, room domain.RoomID, state json.RawMessage, target core.SessionID) int {
	unlock, ok := o.member(sid, room, protocol.TypePeerStateOffer)
	if !ok {
		return 0
	}
	defer unlock()
	return o.Reconciler.RelaySnapshot(room, sid, state, target)
}
