package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// MemoryQueue is an in-process FIFO waiting queue for one tier.
type MemoryQueue struct {
	tier model.Tier
	now  func() time.Time

	mu      sync.Mutex
	seq     uint64
	entries []model.QueueEntry // kept in FIFO order
}

// NewMemoryQueue returns an empty queue for tier.
func NewMemoryQueue(tier model.Tier) *MemoryQueue {
	return &MemoryQueue{tier: tier, now: func() time.Time { return time.Now().UTC() }}
}

// Append assigns the entry an id and sequence number and inserts it in
// FIFO position.  A zero EnqueuedAt is set to the current time.
func (q *MemoryQueue) Append(_ context.Context, e *model.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	e.ID = q.seq
	e.Seq = q.seq
	e.Tier = q.tier
	if e.EnqueuedAt.IsZero() {
		e.EnqueuedAt = q.now()
	}
	i := sort.Search(len(q.entries), func(i int) bool { return e.Before(q.entries[i]) })
	q.entries = append(q.entries, model.QueueEntry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = *e
	return nil
}

func (q *MemoryQueue) Entries(_ context.Context) ([]model.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.QueueEntry(nil), q.entries...), nil
}

func (q *MemoryQueue) Entry(_ context.Context, id uint64) (*model.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: queue entry %d", model.ErrNotFound, id)
}

func (q *MemoryQueue) Remove(_ context.Context, id uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: queue entry %d", model.ErrNotFound, id)
}
