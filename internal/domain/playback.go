package domain

import (
	"errors"
	"math"
)

type Action string

const (
	ActionPlaying Action = "playing"
	ActionPaused  Action = "paused"
)

var (
	ErrUnknownAction   = errors.New("unknown playback action")
	ErrInvalidPosition = errors.New("invalid playback position")
)

// ParseAction accepts the canonical names and the short play/pause forms
// older clients still send.
func ParseAction(s string) (Action, error) {
	switch s {
	case "playing", "play":
		return ActionPlaying, nil
	case "paused", "pause":
		return ActionPaused, nil
	}
	return "", ErrUnknownAction
}

func ValidatePosition(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return ErrInvalidPosition
	}
	return nil
}

// PlaybackState is the authoritative control-plane state of one room.
type PlaybackState struct {
	Action     Action  `json:"action"`
	Position   float64 `json:"position"`
	CapturedAt int64   `json:"capturedAt"`
	Origin     string  `json:"originId"`
}

// PredictAt returns the position the room should be at, at epoch ms now.
// A paused state never moves.
func (s PlaybackState) PredictAt(now int64) float64 {
	if s.Action != ActionPlaying {
		return s.Position
	}
	elapsed := now - s.CapturedAt
	if elapsed < 0 {
		elapsed = 0
	}
	return s.Position + float64(elapsed)/1000
}

// Drift is the absolute distance between the predicted position at the
// report time and the reported position.
func (s PlaybackState) Drift(reported float64, at int64) float64 {
	return math.Abs(s.PredictAt(at) - reported)
}
