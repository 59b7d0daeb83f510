package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// RedisQueue stores one tier's waiting queue in Redis so that several
// server processes share it.  Entries live in a sorted set scored by
// enqueue time (microseconds) plus one hash per entry:
//
//	seating:<tier>:queue            ZSET  entry id -> enqueued_at µs
//	seating:<tier>:queue:seq        STRING id generator (INCR)
//	seating:<tier>:queue:entry:<id> HASH  entry fields
type RedisQueue struct {
	rdb    *redis.Client
	tier   model.Tier
	prefix string
	now    func() time.Time
}

// NewRedisQueue returns a queue for tier backed by rdb.
func NewRedisQueue(rdb *redis.Client, tier model.Tier) *RedisQueue {
	if rdb == nil {
		panic("nil redis client passed to NewRedisQueue")
	}
	return &RedisQueue{
		rdb:    rdb,
		tier:   tier,
		prefix: "seating:" + string(tier) + ":queue",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (q *RedisQueue) entryKey(id uint64) string {
	return q.prefix + ":entry:" + strconv.FormatUint(id, 10)
}

func (q *RedisQueue) Append(ctx context.Context, e *model.QueueEntry) error {
	id, err := q.rdb.Incr(ctx, q.prefix+":seq").Result()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.Seq = uint64(id)
	e.Tier = q.tier
	if e.EnqueuedAt.IsZero() {
		e.EnqueuedAt = q.now()
	}
	e.EnqueuedAt = e.EnqueuedAt.UTC()

	_, err = q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, q.entryKey(e.ID), map[string]any{
			"client_name":     e.ClientName,
			"client_contact":  e.ClientContact,
			"requested_seats": e.RequestedSeats,
			"enqueued_at":     e.EnqueuedAt.Format(time.RFC3339Nano),
			"seq":             e.Seq,
		})
		p.ZAdd(ctx, q.prefix, redis.Z{Score: float64(e.EnqueuedAt.UnixMicro()), Member: strconv.FormatUint(e.ID, 10)})
		return nil
	})
	return err
}

func (q *RedisQueue) Entries(ctx context.Context) ([]model.QueueEntry, error) {
	ids, err := q.rdb.ZRange(ctx, q.prefix, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.QueueEntry{}, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = q.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, raw := range ids {
			id, _ := strconv.ParseUint(raw, 10, 64)
			cmds[i] = p.HGetAll(ctx, q.entryKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.QueueEntry, 0, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("queue member %q: %w", raw, err)
		}
		fields := cmds[i].Val()
		if len(fields) == 0 {
			// removed between ZRANGE and HGETALL
			continue
		}
		e, err := q.decode(id, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (q *RedisQueue) Entry(ctx context.Context, id uint64) (*model.QueueEntry, error) {
	fields, err := q.rdb.HGetAll(ctx, q.entryKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: queue entry %d", model.ErrNotFound, id)
	}
	e, err := q.decode(id, fields)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (q *RedisQueue) Remove(ctx context.Context, id uint64) error {
	var zrem *redis.IntCmd
	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		zrem = p.ZRem(ctx, q.prefix, strconv.FormatUint(id, 10))
		p.Del(ctx, q.entryKey(id))
		return nil
	})
	if err != nil {
		return err
	}
	if zrem.Val() == 0 {
		return fmt.Errorf("%w: queue entry %d", model.ErrNotFound, id)
	}
	return nil
}

func (q *RedisQueue) decode(id uint64, f map[string]string) (model.QueueEntry, error) {
	e := model.QueueEntry{
		ID:            id,
		Tier:          q.tier,
		ClientName:    f["client_name"],
		ClientContact: f["client_contact"],
	}
	var err error
	if e.RequestedSeats, err = strconv.Atoi(f["requested_seats"]); err != nil {
		return e, fmt.Errorf("queue entry %d: requested_seats: %w", id, err)
	}
	if e.Seq, err = strconv.ParseUint(f["seq"], 10, 64); err != nil {
		return e, fmt.Errorf("queue entry %d: seq: %w", id, err)
	}
	if e.EnqueuedAt, err = time.Parse(time.RFC3339Nano, f["enqueued_at"]); err != nil {
		return e, fmt.Errorf("queue entry %d: enqueued_at: %w", id, err)
	}
	e.EnqueuedAt = e.EnqueuedAt.UTC()
	return e, nil
}
