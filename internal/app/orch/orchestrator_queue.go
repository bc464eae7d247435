package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

// VideoAdded loads a video for the whole room, sender included.
func (o *Orchestrator) VideoAdded(sid core.SessionID, room domain.RoomID, id domain.VideoID) {
	if id == "" {
		o.drop(sid, protocol.TypeVideoAdded, app.ReasonMalformed, domain.ErrVideoIDEmpty)
		return
	}
	unlock, ok := o.member(sid, room, protocol.TypeVideoAdded)
	if !ok {
		return
	}
	defer unlock()
	o.loadVideo(room, sid, id)
}

// loadVideo switches the room to id. The previous playback state
// belongs to the old video and is dropped.
func (o *Orchestrator) loadVideo(room domain.RoomID, sid core.SessionID, id domain.VideoID) {
	o.Queue.SetNowPlaying(room, id)
	o.Store.Delete(room)
	log.Info().Str("module", "orch").Str("room", string(room)).Str("sid", string(sid)).Str("video", string(id)).Msg("video loaded")
	o.applyPolicy(room, o.Out.ToRoom(room, "", protocol.NewNewVideo(id, string(sid))))
}

func (o *Orchestrator) AddToQueue(sid core.SessionID, room domain.RoomID, id domain.VideoID, title string) {
	if id == "" {
		o.drop(sid, protocol.TypeAddToQueue, app.ReasonMalformed, domain.ErrVideoIDEmpty)
		return
	}
	unlock, ok := o.member(sid, room, protocol.TypeAddToQueue)
	if !ok {
		return
	}
	defer unlock()
	var addedBy string
	if sess, ok := o.Registry.GetSession(sid); ok {
		addedBy = sess.Meta().DisplayName()
	}
	o.Queue.Append(room, domain.QueuedVideo{VideoID: id, Title: title, AddedBy: addedBy})
	o.broadcastQueue(room)
}

func (o *Orchestrator) RemoveFromQueue(sid core.SessionID, room domain.RoomID, index int) {
	unlock, ok := o.member(sid, room, protocol.TypeRemoveFromQueue)
	if !ok {
		return
	}
	defer unlock()
	if _, err := o.Queue.RemoveAt(room, index); err != nil {
		o.drop(sid, protocol.TypeRemoveFromQueue, app.ReasonMalformed, err)
		return
	}
	o.broadcastQueue(room)
}

func (o *Orchestrator) PlayFromQueue(sid core.SessionID, room domain.RoomID, id domain.VideoID) {
	unlock, ok := o.member(sid, room, protocol.TypePlayFromQueue)
	if !ok {
		return
	}
	defer unlock()
	if _, found := o.Queue.Take(room, id); !found {
		o.drop(sid, protocol.TypePlayFromQueue, app.ReasonMalformed, app.ErrQueueIndex)
		return
	}
	o.loadVideo(room, sid, id)
	o.broadcastQueue(room)
}

// VideoEnded advances the queue once per ended video, however many
// members report it.
func (o *Orchestrator) VideoEnded(sid core.SessionID, room domain.RoomID, ended domain.VideoID) {
	unlock, ok := o.member(sid, room, protocol.TypeVideoEnded)
	if !ok {
		return
	}
	defer unlock()
	if ended == "" {
		ended = o.Queue.NowPlaying(room)
	}
	next, ok := o.Queue.Advance(room, ended)
	if !ok {
		return
	}
	o.Store.Delete(room)
	log.Info().Str("module", "orch").Str("room", string(room)).Str("video", string(next)).Msg("queue advanced")
	o.applyPolicy(room, o.Out.ToRoom(room, "", protocol.NewPlayNextVideo(next)))
	o.broadcastQueue(room)
}

func (o *Orchestrator) broadcastQueue(room domain.RoomID) {
	queue, now := o.Queue.Snapshot(room)
	o.applyPolicy(room, o.Out.ToRoom(room, "", protocol.NewQueueUpdated(queue, now)))
}
