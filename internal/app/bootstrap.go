package app

import (
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

const DefaultBootstrapTimeout = 2 * time.Second

type pendingJoin struct {
	timer clockwork.Timer
}

// Bootstrap tracks joiners waiting for a live snapshot from a peer.
// The first offer reaching a pending joiner is delivered to it alone;
// a joiner nobody answers within Timeout is dropped and stays without
// a loaded video.
type Bootstrap struct {
	Out     core.Outbound
	Rooms   *RoomManager
	Clock   clockwork.Clock
	Timeout time.Duration
	Metrics *Metrics

	mu      sync.Mutex
	pending map[domain.RoomID]map[core.SessionID]*pendingJoin
}

func NewBootstrap(out core.Outbound, rooms *RoomManager, clock clockwork.Clock, timeout time.Duration) *Bootstrap {
	if timeout <= 0 {
		timeout = DefaultBootstrapTimeout
	}
	return &Bootstrap{
		Out:     out,
		Rooms:   rooms,
		Clock:   clock,
		Timeout: timeout,
		pending: make(map[domain.RoomID]map[core.SessionID]*pendingJoin),
	}
}

// Request asks every member of room except joiner for its player state.
// Caller holds the room lock.
func (b *Bootstrap) Request(room domain.RoomID, joiner core.SessionID) core.PublishResult {
	b.mu.Lock()
	joins, ok := b.pending[room]
	if !ok {
		joins = make(map[core.SessionID]*pendingJoin)
		b.pending[room] = joins
	}
	if old, ok := joins[joiner]; ok {
		old.timer.Stop()
	}
	p := &pendingJoin{}
	p.timer = b.Clock.AfterFunc(b.Timeout, func() { b.expire(room, joiner, p) })
	joins[joiner] = p
	b.mu.Unlock()

	log.Debug().Str("module", "app.bootstrap").Str("room", string(room)).Str("joiner", string(joiner)).Msg("snapshot requested")
	return b.Out.ToRoom(room, joiner, protocol.NewRequestVideoState(string(joiner)))
}

func (b *Bootstrap) expire(room domain.RoomID, joiner core.SessionID, p *pendingJoin) {
	unlock := b.Rooms.Lock(room)
	defer unlock()

	b.mu.Lock()
	cur, ok := b.pending[room][joiner]
	if !ok || cur != p {
		b.mu.Unlock()
		return
	}
	b.removeLocked(room, joiner)
	b.mu.Unlock()

	if b.Metrics != nil {
		b.Metrics.Bootstraps.WithLabelValues("timeout").Inc()
	}
	log.Info().
		Str("module", "app.bootstrap").
		Str("room", string(room)).
		Str("joiner", string(joiner)).
		Dur("timeout", b.Timeout).
		Msg("no peer snapshot, joiner left without video")
}

// Relay forwards an offer from sid. With a target only that pending
// joiner is served, otherwise every pending joiner other than sid.
// It returns how many joiners received the snapshot. Caller holds the
// room lock.
func (b *Bootstrap) Relay(room domain.RoomID, sid core.SessionID, state json.RawMessage, target core.SessionID) int {
	b.mu.Lock()
	joins := b.pending[room]
	var targets []core.SessionID
	for joiner, p := range joins {
		if joiner == sid || (target != "" && joiner != target) {
			continue
		}
		p.timer.Stop()
		targets = append(targets, joiner)
	}
	for _, joiner := range targets {
		b.removeLocked(room, joiner)
	}
	b.mu.Unlock()

	delivered := 0
	msg := protocol.NewPeerStateDeliver(state, string(sid))
	for _, joiner := range targets {
		if err := b.Out.ToSession(joiner, msg); err != nil {
			log.Warn().Err(err).Str("module", "app.bootstrap").Str("joiner", string(joiner)).Msg("snapshot not delivered")
			continue
		}
		delivered++
	}
	if b.Metrics != nil && delivered > 0 {
		b.Metrics.Bootstraps.WithLabelValues("delivered").Add(float64(delivered))
	}
	if len(targets) == 0 {
		log.Debug().Str("module", "app.bootstrap").Str("room", string(room)).Str("sid", string(sid)).Msg("late or unsolicited snapshot ignored")
	}
	return delivered
}

// Cancel drops a pending joiner, e.g. when it leaves before any answer.
func (b *Bootstrap) Cancel(room domain.RoomID, joiner core.SessionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pending[room][joiner]; ok {
		p.timer.Stop()
		b.removeLocked(room, joiner)
	}
}

// Forget drops every pending joiner of room.
func (b *Bootstrap) Forget(room domain.RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.pending[room] {
		p.timer.Stop()
	}
	delete(b.pending, room)
}

func (b *Bootstrap) Pending(room domain.RoomID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending[room])
}

func (b *Bootstrap) removeLocked(room domain.RoomID, joiner core.SessionID) {
	joins, ok := b.pending[room]
	if !ok {
		return
	}
	delete(joins, joiner)
	if len(joins) == 0 {
		delete(b.pending, room)
	}
}
