package app

import (
	"errors"
	"slices"
	"sync"

	"github.com/dkeye/Watch/internal/domain"
)

var ErrQueueIndex = errors.New("queue index out of range")

type roomQueue struct {
	now   domain.VideoID
	items []domain.QueuedVideo
}

// QueueStore keeps the per-room video queue and the currently loaded video.
// Same locking discipline as StateStore.
type QueueStore struct {
	mu     sync.RWMutex
	queues map[domain.RoomID]*roomQueue
}

func NewQueueStore() *QueueStore {
	return &QueueStore{queues: make(map[domain.RoomID]*roomQueue)}
}

func (q *QueueStore) get(room domain.RoomID) *roomQueue {
	rq, ok := q.queues[room]
	if !ok {
		rq = &roomQueue{}
		q.queues[room] = rq
	}
	return rq
}

// Snapshot returns a copy of the queue and the loaded video.
func (q *QueueStore) Snapshot(room domain.RoomID) ([]domain.QueuedVideo, domain.VideoID) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	rq, ok := q.queues[room]
	if !ok {
		return nil, ""
	}
	return slices.Clone(rq.items), rq.now
}

func (q *QueueStore) Append(room domain.RoomID, v domain.QueuedVideo) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rq := q.get(room)
	rq.items = append(rq.items, v)
}

func (q *QueueStore) RemoveAt(room domain.RoomID, index int) (domain.QueuedVideo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rq, ok := q.queues[room]
	if !ok || index < 0 || index >= len(rq.items) {
		return domain.QueuedVideo{}, ErrQueueIndex
	}
	v := rq.items[index]
	rq.items = slices.Delete(rq.items, index, index+1)
	return v, nil
}

// Take removes the first queued entry for id, if any.
func (q *QueueStore) Take(room domain.RoomID, id domain.VideoID) (domain.QueuedVideo, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rq, ok := q.queues[room]
	if !ok {
		return domain.QueuedVideo{}, false
	}
	i := slices.IndexFunc(rq.items, func(v domain.QueuedVideo) bool { return v.VideoID == id })
	if i < 0 {
		return domain.QueuedVideo{}, false
	}
	v := rq.items[i]
	rq.items = slices.Delete(rq.items, i, i+1)
	return v, true
}

func (q *QueueStore) SetNowPlaying(room domain.RoomID, id domain.VideoID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.get(room).now = id
}

// Advance pops the head of the queue into now-playing, but only if the
// caller saw the same current video. That makes concurrent "ended"
// reports from several members advance the queue once.
func (q *QueueStore) Advance(room domain.RoomID, ended domain.VideoID) (domain.VideoID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rq, ok := q.queues[room]
	if !ok || rq.now != ended || len(rq.items) == 0 {
		return "", false
	}
	next := rq.items[0].VideoID
	rq.items = slices.Delete(rq.items, 0, 1)
	rq.now = next
	return next, true
}

func (q *QueueStore) NowPlaying(room domain.RoomID) domain.VideoID {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if rq, ok := q.queues[room]; ok {
		return rq.now
	}
	return ""
}

func (q *QueueStore) Delete(room domain.RoomID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.queues, room)
}
