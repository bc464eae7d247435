package app

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

const (
	DefaultDriftThreshold = 2.0
	DefaultMaxClockSkew   = 2 * time.Second
)

// Reconciler turns playback events into store mutations and correctly
// scoped messages. Callers hold the room lock and have already checked
// that sid is a member of room.
type Reconciler struct {
	Store          *StateStore
	Out            core.Outbound
	Clock          clockwork.Clock
	DriftThreshold float64
	// MaxClockSkew bounds how far a client timestamp may be from server
	// time before it is replaced with server time.
	MaxClockSkew   time.Duration
	Snapshots      *Bootstrap
	Metrics        *Metrics
}

func NewReconciler(store *StateStore, out core.Outbound, clock clockwork.Clock, threshold float64, snapshots *Bootstrap) *Reconciler {
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}
	return &Reconciler{
		Store:          store,
		Out:            out,
		Clock:          clock,
		DriftThreshold: threshold,
		MaxClockSkew:   DefaultMaxClockSkew,
		Snapshots:      snapshots,
	}
}

func (r *Reconciler) now() int64 { return r.Clock.Now().UnixMilli() }

// stamp uses the client's capture time when it sent a plausible one:
// within MaxClockSkew of server time. Anything else becomes server now.
func (r *Reconciler) stamp(ts int64) int64 {
	now := r.now()
	if ts <= 0 {
		return now
	}
	skew := ts - now
	if skew < 0 {
		skew = -skew
	}
	if skew > r.MaxClockSkew.Milliseconds() {
		log.Debug().Str("module", "app.reconciler").Int64("timestamp", ts).Int64("now", now).Msg("client timestamp out of skew window, using server time")
		return now
	}
	return ts
}

func (r *Reconciler) logger(room domain.RoomID, sid core.SessionID) zerolog.Logger {
	return log.With().Str("module", "app.reconciler").Str("room", string(room)).Str("sid", string(sid)).Logger()
}

// ControlChange replaces the room state and relays it to everyone but sid.
func (r *Reconciler) ControlChange(room domain.RoomID, sid core.SessionID, action domain.Action, position float64, ts int64) core.PublishResult {
	st := domain.PlaybackState{
		Action:     action,
		Position:   position,
		CapturedAt: r.stamp(ts),
		Origin:     string(sid),
	}
	r.Store.Replace(room, st)
	l := r.logger(room, sid)
	l.Debug().Str("action", string(action)).Float64("position", position).Msg("control change")
	return r.Out.ToRoom(room, sid, protocol.NewPlaybackUpdate(st))
}

// Seek merges the new position, keeping the current action.
func (r *Reconciler) Seek(room domain.RoomID, sid core.SessionID, position float64, ts int64) core.PublishResult {
	st := r.Store.MergePosition(room, position, r.stamp(ts), string(sid))
	l := r.logger(room, sid)
	l.Debug().Float64("position", position).Str("action", string(st.Action)).Msg("seek")
	return r.Out.ToRoom(room, sid, protocol.NewSeekUpdate(st))
}

// Progress checks a client's reported position against the prediction and
// privately corrects the reporter when drift exceeds the threshold.
// It reports whether a correction was sent.
func (r *Reconciler) Progress(room domain.RoomID, sid core.SessionID, position float64, ts int64) bool {
	st, ok := r.Store.Get(room)
	if !ok {
		return false
	}
	drift := st.Drift(position, r.stamp(ts))
	if drift <= r.DriftThreshold {
		return false
	}
	now := r.now()
	fix := protocol.NewForceSync(st.Action, st.PredictAt(now), now, now)
	l := r.logger(room, sid)
	if err := r.Out.ToSession(sid, fix); err != nil {
		l.Warn().Err(err).Msg("force-sync not delivered")
		return false
	}
	if r.Metrics != nil {
		r.Metrics.ForceSyncs.WithLabelValues("drift").Inc()
	}
	l.Info().Float64("drift", drift).Float64("reported", position).Float64("corrected", fix.Position).Msg("force sync")
	return true
}

// Resync sends the stored state as-is to sid. Nothing is sent when the
// room has no state yet.
func (r *Reconciler) Resync(room domain.RoomID, sid core.SessionID) bool {
	st, ok := r.Store.Get(room)
	if !ok {
		return false
	}
	if err := r.Out.ToSession(sid, protocol.NewForceSync(st.Action, st.Position, st.CapturedAt, r.now())); err != nil {
		l := r.logger(room, sid)
		l.Warn().Err(err).Msg("resync not delivered")
		return false
	}
	if r.Metrics != nil {
		r.Metrics.ForceSyncs.WithLabelValues("resync").Inc()
	}
	return true
}

// RelaySnapshot passes a peer's live player state through, untouched, to
// the joiner(s) waiting on it. The store is not consulted.
func (r *Reconciler) RelaySnapshot(room domain.RoomID, sid core.SessionID, state json.RawMessage, target core.SessionID) int {
	if r.Snapshots == nil {
		return 0
	}
	return r.Snapshots.Relay(room, sid, state, target)
}
