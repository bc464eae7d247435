// Package orch is the session lifecycle manager: it owns the
// Connected -> JoinedRoom -> Connected/Disconnected transitions and runs
// every room-scoped event under that room's single-writer lock.
package orch

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

const DefaultDirectoryTimeout = 3 * time.Second

type Options struct {
	Clock            clockwork.Clock
	Directory        core.RoomDirectory
	DirectoryTimeout time.Duration
	DriftThreshold   float64
	MaxClockSkew     time.Duration
	BootstrapTimeout time.Duration
	Policy           app.Policy
	Metrics          *app.Metrics
}

type Orchestrator struct {
	Registry   *app.Registry
	Rooms      *app.RoomManager
	Store      *app.StateStore
	Queue      *app.QueueStore
	Presence   *app.Presence
	Reconciler *app.Reconciler
	Bootstrap  *app.Bootstrap
	Out        core.Outbound
	Policy     app.Policy
	Metrics    *app.Metrics

	Directory        core.RoomDirectory
	DirectoryTimeout time.Duration

	lookups conc.WaitGroup
}

func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DirectoryTimeout <= 0 {
		opts.DirectoryTimeout = DefaultDirectoryTimeout
	}
	reg := app.NewRegistry()
	rooms := app.NewRoomManager()
	store := app.NewStateStore()
	out := app.NewPublisher(reg, opts.Metrics)

	boot := app.NewBootstrap(out, rooms, opts.Clock, opts.BootstrapTimeout)
	boot.Metrics = opts.Metrics
	rec := app.NewReconciler(store, out, opts.Clock, opts.DriftThreshold, boot)
	rec.Metrics = opts.Metrics
	if opts.MaxClockSkew > 0 {
		rec.MaxClockSkew = opts.MaxClockSkew
	}

	return &Orchestrator{
		Registry:         reg,
		Rooms:            rooms,
		Store:            store,
		Queue:            app.NewQueueStore(),
		Presence:         app.NewPresence(reg, out),
		Reconciler:       rec,
		Bootstrap:        boot,
		Out:              out,
		Policy:           opts.Policy,
		Metrics:          opts.Metrics,
		Directory:        opts.Directory,
		DirectoryTimeout: opts.DirectoryTimeout,
	}
}

// Connect registers a transport session (Disconnected -> Connected).
func (o *Orchestrator) Connect(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	o.Registry.BindSignal(sid, sess, cancel)
	if o.Metrics != nil {
		o.Metrics.Connections.Inc()
	}
}

// Disconnect is the transport teardown: an implicit leave of the current
// room followed by forgetting the connection.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	if _, ok := o.Registry.GetSession(sid); !ok {
		return
	}
	room, _, inRoom := o.Registry.RoomOf(sid)
	if !inRoom {
		o.Registry.Disconnect(sid)
		o.connectionGone()
		return
	}

	unlock := o.Rooms.Lock(room)
	o.Registry.Disconnect(sid)
	o.afterDeparture(room, sid)
	unlock()
	o.connectionGone()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("disconnected")
}

func (o *Orchestrator) connectionGone() {
	if o.Metrics != nil {
		o.Metrics.Connections.Dec()
	}
}

// Wait blocks until in-flight directory lookups finish.
func (o *Orchestrator) Wait() {
	if r := o.lookups.WaitAndRecover(); r != nil {
		log.Error().Str("module", "orch").Str("panic", r.String()).Msg("directory lookup panicked")
	}
}

// member takes the room lock and verifies sid is currently joined to it.
func (o *Orchestrator) member(sid core.SessionID, room domain.RoomID, event string) (func(), bool) {
	if room == "" {
		o.drop(sid, event, app.ReasonMalformed, app.ErrRoomIDEmpty)
		return nil, false
	}
	unlock := o.Rooms.Lock(room)
	cur, _, ok := o.Registry.RoomOf(sid)
	if !ok || cur != room {
		unlock()
		o.drop(sid, event, app.ReasonNotInRoom, nil)
		return nil, false
	}
	if o.Metrics != nil {
		o.Metrics.Events.WithLabelValues(event).Inc()
	}
	return unlock, true
}

// drop logs an event that will not be processed. Clients never hear
// about it. Rate-limited drops log at debug so a flood stays quiet.
func (o *Orchestrator) drop(sid core.SessionID, event, reason string, err error) {
	if o.Metrics != nil {
		o.Metrics.EventsDropped.WithLabelValues(reason).Inc()
	}
	ev := log.Warn()
	if reason == app.ReasonRateLimited {
		ev = log.Debug()
	}
	ev.
		Err(err).
		Str("module", "orch").
		Str("sid", string(sid)).
		Str("event", event).
		Str("reason", reason).
		Msg("event dropped")
}

// Drop is the adapter-facing variant of drop for events that failed to
// decode.
func (o *Orchestrator) Drop(sid core.SessionID, event, reason string, err error) {
	o.drop(sid, event, reason, err)
}

// applyPolicy reacts to members whose send buffer was full.
func (o *Orchestrator) applyPolicy(room domain.RoomID, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(string(room), slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow.ID())).Str("room", string(room)).Msg("kicking slow member")
			o.Registry.Cancel(slow.ID())
		case app.DropFrame, app.NoAction:
		}
	}
}
