package domain

import "errors"

var ErrVideoIDEmpty = errors.New("video id empty")

type VideoID string

type QueuedVideo struct {
	VideoID VideoID `json:"videoId"`
	Title   string  `json:"title,omitempty"`
	AddedBy string  `json:"addedBy,omitempty"`
}
