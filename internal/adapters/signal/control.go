package signal

import (
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/protocol"
)

func (ctl *SignalWSController) handlePing(sid core.SessionID) {
	_ = ctl.Orch.Out.ToSession(sid, protocol.NewPong())
}
