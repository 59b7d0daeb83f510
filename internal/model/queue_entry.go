package model

import "time"

// QueueEntry is a client waiting for seats in one tier.  Entries are
// ordered by EnqueuedAt, then Seq, and leave the queue only through a
// successful promotion or an explicit withdrawal.
type QueueEntry struct {
	ID             uint64    `json:"id"`
	Tier           Tier      `json:"tier"`
	ClientName     string    `json:"client_name"`
	ClientContact  string    `json:"client_contact"`
	RequestedSeats int       `json:"requested_seats"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
	Seq            uint64    `json:"seq"`
}

// Before reports whether e is ahead of o in FIFO order.
func (e QueueEntry) Before(o QueueEntry) bool {
	if !e.EnqueuedAt.Equal(o.EnqueuedAt) {
		return e.EnqueuedAt.Before(o.EnqueuedAt)
	}
	return e.Seq < o.Seq
}
