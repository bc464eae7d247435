package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

// Publisher is the core.Outbound backed by the registry: it encodes a
// message once and hands the frame to each target's signal connection.
type Publisher struct {
	Registry *Registry
	Metrics  *Metrics
}

func NewPublisher(reg *Registry, m *Metrics) *Publisher {
	return &Publisher{Registry: reg, Metrics: m}
}

func (p *Publisher) ToRoom(room domain.RoomID, except core.SessionID, msg any) core.PublishResult {
	res := core.PublishResult{}
	frame, err := protocol.Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.publisher").Msg("encode broadcast")
		return res
	}
	for _, snap := range p.Registry.SessionsOf(room) {
		if snap.SID == except {
			continue
		}
		if err := snap.Session.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, snap.Session)
			continue
		}
		res.SendTo++
	}
	if n := len(res.Dropped); n > 0 && p.Metrics != nil {
		p.Metrics.FramesDropped.Add(float64(n))
	}
	log.Debug().
		Str("module", "app.publisher").
		Str("room", string(room)).
		Str("from", string(except)).
		Int("sent_to", res.SendTo).
		Int("dropped", len(res.Dropped)).
		Msg("broadcast result")
	return res
}

func (p *Publisher) ToSession(sid core.SessionID, msg any) error {
	sess, ok := p.Registry.GetSession(sid)
	if !ok {
		return ErrUnknownSession
	}
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		if p.Metrics != nil {
			p.Metrics.FramesDropped.Inc()
		}
		return err
	}
	return nil
}
