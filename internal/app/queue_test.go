package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Watch/internal/domain"
)

func TestQueueStore(t *testing.T) {
	t.Run("append remove and take", func(t *testing.T) {
		req := require.New(t)
		q := NewQueueStore()
		q.Append("r1", domain.QueuedVideo{VideoID: "v1"})
		q.Append("r1", domain.QueuedVideo{VideoID: "v2"})
		q.Append("r1", domain.QueuedVideo{VideoID: "v3"})

		_, err := q.RemoveAt("r1", 3)
		req.ErrorIs(err, ErrQueueIndex)
		v, err := q.RemoveAt("r1", 1)
		req.NoError(err)
		req.Equal(domain.VideoID("v2"), v.VideoID)

		_, ok := q.Take("r1", "missing")
		req.False(ok)
		v, ok = q.Take("r1", "v3")
		req.True(ok)
		req.Equal(domain.VideoID("v3"), v.VideoID)

		items, _ := q.Snapshot("r1")
		req.Len(items, 1)
		req.Equal(domain.VideoID("v1"), items[0].VideoID)
	})

	t.Run("advance happens once per ended video", func(t *testing.T) {
		req := require.New(t)
		q := NewQueueStore()
		q.SetNowPlaying("r1", "v0")
		q.Append("r1", domain.QueuedVideo{VideoID: "v1"})
		q.Append("r1", domain.QueuedVideo{VideoID: "v2"})

		next, ok := q.Advance("r1", "v0")
		req.True(ok)
		req.Equal(domain.VideoID("v1"), next)

		_, ok = q.Advance("r1", "v0")
		req.False(ok, "a late report for v0 must not skip v1")
		req.Equal(domain.VideoID("v1"), q.NowPlaying("r1"))
	})

	t.Run("empty queue does not advance", func(t *testing.T) {
		req := require.New(t)
		q := NewQueueStore()
		q.SetNowPlaying("r1", "v0")

		_, ok := q.Advance("r1", "v0")
		req.False(ok)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		req := require.New(t)
		q := NewQueueStore()
		q.Append("r1", domain.QueuedVideo{VideoID: "v1"})

		items, _ := q.Snapshot("r1")
		items[0].VideoID = "changed"
		again, _ := q.Snapshot("r1")
		req.Equal(domain.VideoID("v1"), again[0].VideoID)

		q.Delete("r1")
		items, now := q.Snapshot("r1")
		req.Nil(items)
		req.Empty(now)
	})
}
