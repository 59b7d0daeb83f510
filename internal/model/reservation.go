package model

import "time"

// PaymentStatus tracks whether the fare of a reservation was collected.
type PaymentStatus string

const (
	PaymentToCollect PaymentStatus = "TO_COLLECT"
	PaymentPaid      PaymentStatus = "PAID"
)

// Reservation groups one or more seats of a single vehicle under one
// client.  Cancelling it frees every seat together.
//
// Fields:
//
//	ID            – primary key identifier.
//	Tier          – tier of the vehicle.
//	VehicleID     – vehicle all seats belong to.
//	ClientName    – passenger name.
//	ClientContact – phone number or other contact.
//	SeatIDs       – held seats, ordered by position.
//	PaymentStatus – TO_COLLECT until confirmed, then PAID.
//	CreatedAt     – creation timestamp.
//	PaidAt        – when payment was confirmed.
type Reservation struct {
	ID            uint64        `json:"id"`
	Tier          Tier          `json:"tier"`
	VehicleID     uint64        `json:"vehicle_id"`
	ClientName    string        `json:"client_name"`
	ClientContact string        `json:"client_contact"`
	SeatIDs       []uint64      `json:"seat_ids"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r Reservation) Clone() Reservation {
	out := r
	out.SeatIDs = append([]uint64(nil), r.SeatIDs...)
	if r.PaidAt != nil {
		t := *r.PaidAt
		out.PaidAt = &t
	}
	return out
}
