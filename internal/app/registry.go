package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

var (
	ErrRoomIDEmpty    = errors.New("room id empty")
	ErrUnknownSession = errors.New("unknown session")
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry is the connection registry: which connection is bound, which
// room it is in and under which display name. A connection belongs to at
// most one room at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	rooms    map[domain.RoomID]map[core.SessionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		rooms:    make(map[domain.RoomID]map[core.SessionID]struct{}),
	}
}

// BindSignal registers a freshly connected transport session.
func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

// Join moves sid into room under displayName. Any prior membership is
// dropped first and returned so the caller can refresh that room too.
func (r *Registry) Join(sid core.SessionID, room domain.RoomID, displayName string) (domain.RoomID, error) {
	if room == "" {
		return "", ErrRoomIDEmpty
	}
	if err := domain.ValidateUsername(displayName); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return "", ErrUnknownSession
	}
	prev := entry.RoomID
	if prev != "" {
		r.removeMemberLocked(sid, prev)
	}
	if err := entry.Session.Meta().User.SetUsername(displayName); err != nil {
		return prev, err
	}
	entry.RoomID = room
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[core.SessionID]struct{})
		r.rooms[room] = members
	}
	members[sid] = struct{}{}
	log.Info().
		Str("module", "app.registry").
		Str("sid", string(sid)).
		Str("room", string(room)).
		Str("prev_room", string(prev)).
		Str("name", displayName).
		Msg("joined room")
	return prev, nil
}

// Leave removes sid from room. It reports false if sid was not a member.
func (r *Registry) Leave(sid core.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomID == "" || entry.RoomID != room {
		return false
	}
	r.removeMemberLocked(sid, room)
	entry.RoomID = ""
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("left room")
	return true
}

// Disconnect forgets sid entirely, leaving its room implicitly.
func (r *Registry) Disconnect(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	delete(r.sessions, sid)
	room := entry.RoomID
	if room != "" {
		r.removeMemberLocked(sid, room)
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("unbind session")
	return room, room != ""
}

func (r *Registry) removeMemberLocked(sid core.SessionID, room domain.RoomID) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns the sorted display names currently in room.
// Connections without a display name are skipped.
func (r *Registry) MembersOf(room domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rooms[room]))
	for sid := range r.rooms[room] {
		name := r.sessions[sid].Session.Meta().DisplayName()
		if name != "" {
			names = append(names, name)
		}
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

func (r *Registry) MemberCount(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomID == "" {
		return "", nil, false
	}
	return entry.RoomID, entry.Session, true
}

type regSnap struct {
	SID     core.SessionID
	Session core.MemberSession
}

// SessionsOf snapshots the sessions of room so callers can fan out
// without holding the registry lock.
func (r *Registry) SessionsOf(room domain.RoomID) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.rooms[room]))
	for sid := range r.rooms[room] {
		out = append(out, regSnap{SID: sid, Session: r.sessions[sid].Session})
	}
	return out
}

// Rooms lists the ids of rooms with at least one member.
func (r *Registry) Rooms() []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := lo.Keys(r.rooms)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cancel tears down the transport context of sid.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
