package protocol

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Watch/internal/domain"
)

func TestEventType(t *testing.T) {
	t.Run("reads the type field", func(t *testing.T) {
		req := require.New(t)
		typ, err := EventType([]byte(`{"type":"seek","roomId":"r1","position":3}`))
		req.NoError(err)
		req.Equal(TypeSeek, typ)
	})

	t.Run("rejects broken json", func(t *testing.T) {
		req := require.New(t)
		_, err := EventType([]byte(`{"type":`))
		req.ErrorIs(err, ErrBadJSON)
	})

	t.Run("rejects frames without a type", func(t *testing.T) {
		req := require.New(t)
		_, err := EventType([]byte(`{"roomId":"r1"}`))
		req.ErrorIs(err, ErrMissingType)
	})
}

func TestDecode(t *testing.T) {
	t.Run("valid control change", func(t *testing.T) {
		req := require.New(t)
		var p ControlChange
		err := Decode([]byte(`{"type":"control-change","roomId":"r1","action":"playing","position":12.5,"timestamp":1000}`), &p)
		req.NoError(err)
		req.Equal("r1", p.RoomID)
		req.Equal("playing", p.Action)
		req.NotNil(p.Position)
		req.Equal(12.5, *p.Position)
		req.Equal(int64(1000), p.Timestamp)
	})

	t.Run("zero position is accepted", func(t *testing.T) {
		req := require.New(t)
		var p Seek
		req.NoError(Decode([]byte(`{"type":"seek","roomId":"r1","position":0}`), &p))
		req.Equal(0.0, *p.Position)
	})

	cases := []struct {
		name string
		data string
		into any
	}{
		{"negative position", `{"roomId":"r1","action":"paused","position":-1}`, &ControlChange{}},
		{"missing position", `{"roomId":"r1","action":"paused"}`, &ControlChange{}},
		{"unknown action", `{"roomId":"r1","action":"rewind","position":1}`, &ControlChange{}},
		{"missing room", `{"action":"paused","position":1}`, &ControlChange{}},
		{"position as string", `{"roomId":"r1","position":"ten"}`, &Seek{}},
		{"missing display name", `{"roomId":"r1"}`, &JoinRoom{}},
		{"missing video state", `{"roomId":"r1"}`, &PeerStateOffer{}},
		{"negative queue index", `{"roomId":"r1","index":-1}`, &RemoveFromQueue{}},
		{"queue item without id", `{"roomId":"r1","video":{"title":"x"}}`, &AddToQueue{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			err := Decode([]byte(tc.data), tc.into)
			req.Error(err)
		})
	}
}

func TestEncode(t *testing.T) {
	req := require.New(t)
	st := domain.PlaybackState{Action: domain.ActionPlaying, Position: 12.5, CapturedAt: 1000, Origin: "a"}

	frame, err := Encode(NewPlaybackUpdate(st))
	req.NoError(err)

	var got map[string]any
	req.NoError(json.Unmarshal(frame, &got))
	req.Equal(TypePlaybackUpdate, got["type"])
	req.Equal("playing", got["action"])
	req.Equal(12.5, got["position"])
	req.Equal("a", got["originId"])
	req.EqualValues(1000, got["timestamp"])
}

func TestNewPresenceUpdate_EmptyList(t *testing.T) {
	req := require.New(t)
	frame, err := Encode(NewPresenceUpdate("r1", nil))
	req.NoError(err)
	req.JSONEq(`{"type":"presence-update","roomId":"r1","members":[]}`, string(frame))
}
