package seating

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/repository"
)

func TestEnqueue_StampsUnderQueueLock(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := NewEngine(repository.NewMemorySeatStore(model.TierStandard), repository.NewMemoryQueue(model.TierStandard), WithLogger(logger))

	var mu sync.Mutex
	unlocked := 0
	tick := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		if e.queueMu.TryLock() {
			e.queueMu.Unlock()
			unlocked++
		}
		tick = tick.Add(time.Millisecond)
		return tick
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := e.Enqueue(context.Background(), EnqueueRequest{ClientName: "Rabe", ClientContact: "032", RequestedSeats: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Zero(t, unlocked, "enqueue time must be taken while holding the queue lock")

	entries, err := e.Queue(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 20)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].ID, entries[i].ID, "queue order must follow append order")
	}
}
