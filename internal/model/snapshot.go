package model

import "time"

// Snapshot is a consistent copy of one tier's vehicles, seats and live
// reservations.  Within a snapshot a seat appears exactly once, so read
// projections built on it never show contradictory seat states.
type Snapshot struct {
	Tier         Tier
	TakenAt      time.Time
	Vehicles     []Vehicle
	Seats        map[uint64][]Seat // keyed by vehicle id, ordered by position
	Reservations []Reservation
}

// SeatRelease describes what a release did to one reservation: which of
// its seats went back to FREE and whether the reservation was deleted
// because it no longer holds any seat.
type SeatRelease struct {
	ReservationID uint64   `json:"reservation_id"`
	VehicleID     uint64   `json:"vehicle_id"`
	SeatIDs       []uint64 `json:"seat_ids"`
	Deleted       bool     `json:"reservation_deleted"`
}

// Inventory is a consistent view of one vehicle: its seats ordered by
// position and the live reservations holding some of them.
type Inventory struct {
	Vehicle      Vehicle
	Seats        []Seat
	Reservations []Reservation
}

// Available counts FREE seats.  A departed vehicle is fully consumed for
// scheduling purposes and always reports zero.
func (inv Inventory) Available() int {
	if inv.Vehicle.Departed {
		return 0
	}
	n := 0
	for _, s := range inv.Seats {
		if s.Status == SeatFree {
			n++
		}
	}
	return n
}
