package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons for EventsDropped.
const (
	ReasonMalformed   = "malformed"
	ReasonNotInRoom   = "not_in_room"
	ReasonRateLimited = "rate_limited"
	ReasonUnknown     = "unknown_type"
)

type Metrics struct {
	Connections   prometheus.Gauge
	Events        *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec
	ForceSyncs    *prometheus.CounterVec
	Bootstraps    *prometheus.CounterVec
	FramesDropped prometheus.Counter
	Evictions     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Name: "watch_connections",
			Help: "Currently bound signaling connections.",
		}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "watch_events_total",
			Help: "Inbound events accepted, by type.",
		}, []string{"type"}),
		EventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "watch_events_dropped_total",
			Help: "Inbound events dropped, by reason.",
		}, []string{"reason"}),
		ForceSyncs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "watch_force_sync_total",
			Help: "Corrective force-sync directives sent, by trigger.",
		}, []string{"trigger"}),
		Bootstraps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "watch_bootstrap_total",
			Help: "Peer snapshot bootstraps, by outcome.",
		}, []string{"outcome"}),
		FramesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "watch_frames_dropped_total",
			Help: "Outbound frames dropped on full send buffers.",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "watch_room_evictions_total",
			Help: "Rooms whose ephemeral state was dropped after the last member left.",
		}),
	}
}
