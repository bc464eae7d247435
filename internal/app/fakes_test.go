package app

import (
	"errors"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

var errFull = errors.New("send buffer full")

// recordingConn is a core.SignalConnection that keeps every frame.
type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *recordingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordingConn) messages() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func (c *recordingConn) ofType(typ string) []map[string]any {
	var out []map[string]any
	for _, m := range c.messages() {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func newTestSession(id string) (core.MemberSession, *recordingConn) {
	conn := &recordingConn{}
	sid := core.SessionID(id)
	return core.NewMemberSession(sid, domain.NewMember(domain.NewUser(domain.UserID(id))), conn), conn
}

// joined binds id and puts it into room under name.
func joined(reg *Registry, id string, room domain.RoomID, name string) *recordingConn {
	sess, conn := newTestSession(id)
	reg.BindSignal(sess.ID(), sess, nil)
	if _, err := reg.Join(sess.ID(), room, name); err != nil {
		panic(err)
	}
	return conn
}
