package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Watch/internal/domain"
)

func TestRegistry_Join(t *testing.T) {
	t.Run("members are sorted display names", func(t *testing.T) {
		req := require.New(t)
		reg := NewRegistry()
		joined(reg, "a", "r1", "zoe")
		joined(reg, "b", "r1", "adam")
		joined(reg, "c", "r2", "carl")

		req.Equal([]string{"adam", "zoe"}, reg.MembersOf("r1"))
		req.Equal([]string{"carl"}, reg.MembersOf("r2"))
		req.Equal(2, reg.MemberCount("r1"))
		req.Equal([]domain.RoomID{"r1", "r2"}, reg.Rooms())
	})

	t.Run("duplicate names collapse", func(t *testing.T) {
		req := require.New(t)
		reg := NewRegistry()
		joined(reg, "a", "r1", "sam")
		joined(reg, "b", "r1", "sam")

		req.Equal([]string{"sam"}, reg.MembersOf("r1"))
		req.Equal(2, reg.MemberCount("r1"))
	})

	t.Run("joining another room leaves the previous one", func(t *testing.T) {
		req := require.New(t)
		reg := NewRegistry()
		joined(reg, "a", "r1", "alice")

		prev, err := reg.Join("a", "r2", "alice")
		req.NoError(err)
		req.Equal(domain.RoomID("r1"), prev)
		req.Empty(reg.MembersOf("r1"))
		req.Equal([]string{"alice"}, reg.MembersOf("r2"))

		room, _, ok := reg.RoomOf("a")
		req.True(ok)
		req.Equal(domain.RoomID("r2"), room)
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		req := require.New(t)
		reg := NewRegistry()
		sess, _ := newTestSession("a")
		reg.BindSignal("a", sess, nil)

		_, err := reg.Join("a", "", "alice")
		req.ErrorIs(err, ErrRoomIDEmpty)
		_, err = reg.Join("a", "r1", "")
		req.ErrorIs(err, domain.ErrUsernameEmpty)
		_, err = reg.Join("ghost", "r1", "bob")
		req.ErrorIs(err, ErrUnknownSession)
		req.Zero(reg.MemberCount("r1"))
	})
}

func TestRegistry_LeaveAndDisconnect(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	joined(reg, "a", "r1", "alice")
	joined(reg, "b", "r1", "bob")

	req.False(reg.Leave("a", "r2"), "not a member of r2")
	req.True(reg.Leave("a", "r1"))
	req.False(reg.Leave("a", "r1"), "second leave is a no-op")
	req.Equal([]string{"bob"}, reg.MembersOf("r1"))

	_, ok := reg.GetSession("a")
	req.True(ok, "leaving keeps the connection")

	room, ok := reg.Disconnect("b")
	req.True(ok)
	req.Equal(domain.RoomID("r1"), room)
	req.Empty(reg.MembersOf("r1"))
	req.Empty(reg.Rooms())
	req.Equal(1, reg.ConnectionCount())

	_, ok = reg.Disconnect("b")
	req.False(ok)
}

func TestRegistry_Cancel(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	sess, _ := newTestSession("a")
	canceled := false
	reg.BindSignal("a", sess, func() { canceled = true })

	req.True(reg.Cancel("a"))
	req.True(canceled)
	req.False(reg.Cancel("missing"))
}
