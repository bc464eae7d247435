package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/app/orch"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

type Settings struct {
	ReadLimit  int64
	PingPeriod time.Duration
	WriteWait  time.Duration
	SendBuffer int
	// Origins lists allowed Origin headers; empty allows any.
	Origins []string
}

func DefaultSettings() Settings {
	return Settings{
		ReadLimit:  32768,
		PingPeriod: 54 * time.Second,
		WriteWait:  5 * time.Second,
		SendBuffer: 64,
	}
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Limiter  *RateLimiter
	settings Settings
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, limiter *RateLimiter, s Settings) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		Limiter:  limiter,
		settings: s,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(s.Origins)},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// WsSignalConn implements core.SignalConnection over a websocket.
type WsSignalConn struct {
	conn WSConn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func NewWsSignalConn(conn WSConn, buffer int) *WsSignalConn {
	if buffer <= 0 {
		buffer = DefaultSettings().SendBuffer
	}
	return &WsSignalConn{conn: conn, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// HandleSignal upgrades the request and runs the connection until either
// side goes away.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	client := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", client).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ctl.Serve(ctx, sid, ws)
}

// Serve binds an established connection to the orchestrator and starts
// its pumps.
func (ctl *SignalWSController) Serve(ctx context.Context, sid core.SessionID, ws WSConn) {
	conn := NewWsSignalConn(ws, ctl.settings.SendBuffer)
	user := domain.NewUser(domain.UserID(sid))
	sess := core.NewMemberSession(sid, domain.NewMember(user), conn)

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sid, sess, cancel)

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
