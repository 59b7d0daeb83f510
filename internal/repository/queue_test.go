package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/seating"
)

// Both waiting queue backends must satisfy the same contract.
var (
	_ seating.WaitingQueue = (*MemoryQueue)(nil)
	_ seating.WaitingQueue = (*RedisQueue)(nil)
	_ seating.SeatStore    = (*MemorySeatStore)(nil)
	_ seating.SeatStore    = (*MySQLSeatStore)(nil)
)

func newRedisQueue(t *testing.T, tier model.Tier) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisQueue(rdb, tier), mr
}

func queueBackends(t *testing.T) map[string]seating.WaitingQueue {
	rq, _ := newRedisQueue(t, model.TierStandard)
	return map[string]seating.WaitingQueue{
		"memory": NewMemoryQueue(model.TierStandard),
		"redis":  rq,
	}
}

func TestWaitingQueue_FIFO(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for name, q := range queueBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// Enqueued out of time order; two entries share a timestamp.
			in := []model.QueueEntry{
				{ClientName: "Rivo", ClientContact: "1", RequestedSeats: 1, EnqueuedAt: base.Add(2 * time.Second)},
				{ClientName: "Rabe", ClientContact: "2", RequestedSeats: 2, EnqueuedAt: base},
				{ClientName: "Rasoa", ClientContact: "3", RequestedSeats: 1, EnqueuedAt: base},
			}
			for i := range in {
				require.NoError(t, q.Append(ctx, &in[i]))
				assert.NotZero(t, in[i].ID)
			}

			got, err := q.Entries(ctx)
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, e := range got {
				names[i] = e.ClientName
			}
			assert.Equal(t, []string{"Rabe", "Rasoa", "Rivo"}, names)
			assert.Equal(t, 2, got[0].RequestedSeats)
			assert.True(t, got[0].EnqueuedAt.Equal(base))
			assert.Equal(t, model.TierStandard, got[0].Tier)

			require.NoError(t, q.Remove(ctx, in[1].ID))
			assert.ErrorIs(t, q.Remove(ctx, in[1].ID), model.ErrNotFound)
			_, err = q.Entry(ctx, in[1].ID)
			assert.ErrorIs(t, err, model.ErrNotFound)

			e, err := q.Entry(ctx, in[0].ID)
			require.NoError(t, err)
			assert.Equal(t, "Rivo", e.ClientName)

			got, err = q.Entries(ctx)
			require.NoError(t, err)
			assert.Len(t, got, 2)
			assert.Equal(t, "Rasoa", got[0].ClientName)
		})
	}
}

func TestWaitingQueue_Empty(t *testing.T) {
	for name, q := range queueBackends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := q.Entries(context.Background())
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestRedisQueue_TiersAreSeparate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	std := NewRedisQueue(rdb, model.TierStandard)
	vip := NewRedisQueue(rdb, model.TierVIP)
	ctx := context.Background()

	require.NoError(t, std.Append(ctx, &model.QueueEntry{ClientName: "Rabe", ClientContact: "1", RequestedSeats: 1}))

	got, err := vip.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, mr.Exists("seating:standard:queue"))
	assert.False(t, mr.Exists("seating:vip:queue"))
}

func TestRedisQueue_Unavailable(t *testing.T) {
	q, mr := newRedisQueue(t, model.TierVIP)
	mr.Close()
	err := q.Append(context.Background(), &model.QueueEntry{ClientName: "Rabe", ClientContact: "1", RequestedSeats: 1})
	assert.Error(t, err)
}

func TestMemorySeatStore_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySeatStore(model.TierStandard)
	v, seats, err := s.CreateVehicle(ctx, model.NewVehicle{Itinerary: "A - B", DepartureAt: time.Now(), Capacity: 2})
	require.NoError(t, err)

	res := &model.Reservation{ClientName: "Rakoto", ClientContact: "034", CreatedAt: time.Now()}
	require.NoError(t, s.Reserve(ctx, v.ID, []uint64{seats[0].ID}, res))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap.Seats[v.ID][0].Status = model.SeatFree
	snap.Reservations[0].SeatIDs[0] = 999

	inv, err := s.Inventory(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatPendingPayment, inv.Seats[0].Status)
	assert.Equal(t, []uint64{seats[0].ID}, inv.Reservations[0].SeatIDs)
	assert.Equal(t, 1, inv.Available())
}
