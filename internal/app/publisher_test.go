package app

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Watch/internal/protocol"
)

func TestPublisher_ToRoom(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := NewPublisher(reg, metrics)

	a := joined(reg, "a", "r1", "alice")
	b := joined(reg, "b", "r1", "bob")
	c := joined(reg, "c", "r1", "carol")
	other := joined(reg, "d", "r2", "dan")
	c.full = true

	res := pub.ToRoom("r1", "a", protocol.NewPong())

	req.Equal(1, res.SendTo)
	req.Len(res.Dropped, 1)
	req.Equal("c", string(res.Dropped[0].ID()))
	req.Empty(a.messages(), "sender is excluded")
	req.Len(b.ofType(protocol.TypePong), 1)
	req.Empty(other.messages(), "other rooms are untouched")
	req.Equal(1.0, testutil.ToFloat64(metrics.FramesDropped))
}

func TestPublisher_ToSession(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	pub := NewPublisher(reg, nil)
	a := joined(reg, "a", "r1", "alice")

	req.NoError(pub.ToSession("a", protocol.NewPong()))
	req.Len(a.ofType(protocol.TypePong), 1)
	req.ErrorIs(pub.ToSession("ghost", protocol.NewPong()), ErrUnknownSession)
}
