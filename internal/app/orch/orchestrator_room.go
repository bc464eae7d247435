package orch

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

// JoinRoom moves sid into room (Connected -> JoinedRoom). A previous
// room is left first. Existing members are asked for a live snapshot
// to bootstrap the joiner, and the room metadata is fetched from the
// directory in the background.
func (o *Orchestrator) JoinRoom(ctx context.Context, sid core.SessionID, room domain.RoomID, displayName string) error {
	if room == "" {
		o.drop(sid, protocol.TypeJoinRoom, app.ReasonMalformed, app.ErrRoomIDEmpty)
		return app.ErrRoomIDEmpty
	}
	if err := domain.ValidateUsername(displayName); err != nil {
		o.drop(sid, protocol.TypeJoinRoom, app.ReasonMalformed, err)
		return err
	}
	if _, ok := o.Registry.GetSession(sid); !ok {
		return app.ErrUnknownSession
	}

	if prev, _, ok := o.Registry.RoomOf(sid); ok && prev != room {
		o.LeaveRoom(sid, prev)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(prev)).Msg("left previous room")
	}

	unlock := o.Rooms.Lock(room)
	if _, err := o.Registry.Join(sid, room, displayName); err != nil {
		unlock()
		o.drop(sid, protocol.TypeJoinRoom, app.ReasonMalformed, err)
		return err
	}
	if o.Metrics != nil {
		o.Metrics.Events.WithLabelValues(protocol.TypeJoinRoom).Inc()
	}
	o.applyPolicy(room, o.Presence.Broadcast(room))

	queue, now := o.Queue.Snapshot(room)
	if len(queue) > 0 || now != "" {
		_ = o.Out.ToSession(sid, protocol.NewQueueUpdated(queue, now))
	}
	if o.Registry.MemberCount(room) > 1 {
		o.applyPolicy(room, o.Bootstrap.Request(room, sid))
	}
	unlock()

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("added to room")
	o.lookupRoom(ctx, room)
	return nil
}

// lookupRoom fetches directory metadata off the room lock and sends it
// to the room when found.
func (o *Orchestrator) lookupRoom(ctx context.Context, room domain.RoomID) {
	if o.Directory == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	o.lookups.Go(func() {
		lctx, cancel := context.WithTimeout(ctx, o.DirectoryTimeout)
		defer cancel()
		info, err := o.Directory.Lookup(lctx, room)
		if err != nil {
			ev := log.Warn()
			if errors.Is(err, core.ErrRoomNotFound) {
				ev = log.Debug()
			}
			ev.Err(err).Str("module", "orch").Str("room", string(room)).Msg("room directory lookup")
			return
		}

		unlock := o.Rooms.Lock(room)
		defer unlock()
		if o.Registry.MemberCount(room) == 0 {
			return
		}
		o.applyPolicy(room, o.Out.ToRoom(room, "", protocol.NewRoomData(info)))
	})
}

// LeaveRoom removes sid from room (JoinedRoom -> Connected). It is a
// no-op when sid is not a member of room.
func (o *Orchestrator) LeaveRoom(sid core.SessionID, room domain.RoomID) bool {
	if room == "" {
		o.drop(sid, protocol.TypeLeaveRoom, app.ReasonMalformed, app.ErrRoomIDEmpty)
		return false
	}
	unlock := o.Rooms.Lock(room)
	defer unlock()
	if !o.Registry.Leave(sid, room) {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("leave: not a member")
		return false
	}
	_ = o.Out.ToSession(sid, protocol.NewLeft(room))
	o.afterDeparture(room, sid)
	return true
}

// afterDeparture runs under the room lock once sid is no longer a member.
func (o *Orchestrator) afterDeparture(room domain.RoomID, sid core.SessionID) {
	o.Bootstrap.Cancel(room, sid)
	if o.Registry.MemberCount(room) == 0 {
		o.evict(room)
		return
	}
	o.applyPolicy(room, o.Presence.Broadcast(room))
}

// evict drops the ephemeral state of an empty room.
func (o *Orchestrator) evict(room domain.RoomID) {
	hadState := o.Store.Delete(room)
	o.Queue.Delete(room)
	o.Bootstrap.Forget(room)
	if o.Metrics != nil {
		o.Metrics.Evictions.Inc()
	}
	log.Info().Str("module", "orch").Str("room", string(room)).Bool("had_state", hadState).Msg("room evicted")
}

// Summaries lists active rooms for the REST surface.
func (o *Orchestrator) Summaries() []core.RoomSummary {
	ids := o.Registry.Rooms()
	out := make([]core.RoomSummary, 0, len(ids))
	for _, id := range ids {
		_, hasState := o.Store.Get(id)
		out = append(out, core.RoomSummary{
			ID:          id,
			MemberCount: o.Registry.MemberCount(id),
			HasPlayback: hasState,
			NowPlaying:  string(o.Queue.NowPlaying(id)),
		})
	}
	return out
}

// WhoAmI answers sid with its identity and current room.
func (o *Orchestrator) WhoAmI(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	room, _, _ := o.Registry.RoomOf(sid)
	_ = o.Out.ToSession(sid, protocol.NewWhoAmI(string(sid), sess.Meta().DisplayName(), room))
}

// Members is the presence list of room; empty for unknown rooms.
func (o *Orchestrator) Members(room domain.RoomID) []string {
	return o.Registry.MembersOf(room)
}

// Playback returns the authoritative state of room, if any.
func (o *Orchestrator) Playback(room domain.RoomID) (domain.PlaybackState, bool) {
	return o.Store.Get(room)
}

func (o *Orchestrator) ConnectionCount() int {
	return o.Registry.ConnectionCount()
}
