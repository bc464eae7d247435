package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	var ping <-chan time.Time
	if ctl.settings.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.settings.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ping:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(sid)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(sid)
		}
		c.Close()
	}()

	if ctl.settings.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.settings.ReadLimit)
	}
	if ctl.settings.PingPeriod > 0 {
		wait := ctl.settings.PingPeriod * 2
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(ctx, sid, data)
		}
	}
}

// handleSignal counts every frame against the rate limit, parseable or
// not, before looking at it.
func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.SessionID, data []byte) {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(sid) {
		ctl.Orch.Drop(sid, "", app.ReasonRateLimited, nil)
		return
	}
	typ, err := protocol.EventType(data)
	if err != nil {
		ctl.Orch.Drop(sid, "", app.ReasonMalformed, err)
		return
	}

	switch typ {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(ctx, sid, data)
	case protocol.TypeLeaveRoom:
		ctl.handleLeave(sid, data)
	case protocol.TypePeerStateOffer:
		ctl.handlePeerStateOffer(sid, data)
	case protocol.TypeControlChange:
		ctl.handleControlChange(sid, data)
	case protocol.TypeSeek:
		ctl.handleSeek(sid, data)
	case protocol.TypeProgressReport:
		ctl.handleProgressReport(sid, data)
	case protocol.TypeResyncRequest:
		ctl.handleResyncRequest(sid, data)
	case protocol.TypeVideoAdded:
		ctl.handleVideoAdded(sid, data)
	case protocol.TypeAddToQueue:
		ctl.handleAddToQueue(sid, data)
	case protocol.TypeRemoveFromQueue:
		ctl.handleRemoveFromQueue(sid, data)
	case protocol.TypePlayFromQueue:
		ctl.handlePlayFromQueue(sid, data)
	case protocol.TypeVideoEnded:
		ctl.handleVideoEnded(sid, data)
	case protocol.TypePing:
		ctl.handlePing(sid)
	case protocol.TypeWhoAmI:
		ctl.Orch.WhoAmI(sid)
	default:
		ctl.Orch.Drop(sid, typ, app.ReasonUnknown, nil)
	}
}

// decode parses data into v, dropping the event when it is malformed.
func (ctl *SignalWSController) decode(sid core.SessionID, event string, data []byte, v any) bool {
	if err := protocol.Decode(data, v); err != nil {
		ctl.Orch.Drop(sid, event, app.ReasonMalformed, err)
		return false
	}
	return true
}
