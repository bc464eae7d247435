package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaybackState_PredictAt(t *testing.T) {
	t.Run("playing state advances with wall time", func(t *testing.T) {
		req := require.New(t)
		st := PlaybackState{Action: ActionPlaying, Position: 10.0, CapturedAt: 1_000}

		req.InDelta(13.0, st.PredictAt(4_000), 1e-9)
	})

	t.Run("paused state never moves", func(t *testing.T) {
		req := require.New(t)
		st := PlaybackState{Action: ActionPaused, Position: 10.0, CapturedAt: 1_000}

		req.Equal(10.0, st.PredictAt(1_000))
		req.Equal(10.0, st.PredictAt(60_000))
	})

	t.Run("clock skew does not move playback backwards", func(t *testing.T) {
		req := require.New(t)
		st := PlaybackState{Action: ActionPlaying, Position: 10.0, CapturedAt: 5_000}

		req.Equal(10.0, st.PredictAt(4_000))
	})
}

func TestPlaybackState_Drift(t *testing.T) {
	req := require.New(t)
	st := PlaybackState{Action: ActionPlaying, Position: 10.0, CapturedAt: 0}

	req.InDelta(2.5, st.Drift(10.5, 3_000), 1e-9)
	req.InDelta(0.5, st.Drift(13.5, 3_000), 1e-9)
}

func TestParseAction(t *testing.T) {
	req := require.New(t)

	for in, want := range map[string]Action{
		"playing": ActionPlaying,
		"play":    ActionPlaying,
		"paused":  ActionPaused,
		"pause":   ActionPaused,
	} {
		got, err := ParseAction(in)
		req.NoError(err, in)
		req.Equal(want, got, in)
	}

	_, err := ParseAction("rewind")
	req.ErrorIs(err, ErrUnknownAction)
}

func TestValidatePosition(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidatePosition(0))
	req.NoError(ValidatePosition(3600.25))
	req.ErrorIs(ValidatePosition(-0.1), ErrInvalidPosition)
	req.ErrorIs(ValidatePosition(math.NaN()), ErrInvalidPosition)
	req.ErrorIs(ValidatePosition(math.Inf(1)), ErrInvalidPosition)
}

func TestUser_SetUsername(t *testing.T) {
	req := require.New(t)
	u := NewUser("u1")

	req.ErrorIs(u.SetUsername(""), ErrUsernameEmpty)
	long := make([]rune, MaxUsernameLen+1)
	for i := range long {
		long[i] = 'é'
	}
	req.ErrorIs(u.SetUsername(string(long)), ErrUsernameTooLong)
	req.Empty(u.Username)

	req.NoError(u.SetUsername("alice"))
	req.Equal("alice", NewMember(u).DisplayName())

	var m *Member
	req.Empty(m.DisplayName())
}
