package model

// SeatStatus is the state of a single seat.  The only transitions are
// FREE -> PENDING_PAYMENT -> PAID and PENDING_PAYMENT|PAID -> FREE.
type SeatStatus string

const (
	SeatFree           SeatStatus = "FREE"
	SeatPendingPayment SeatStatus = "PENDING_PAYMENT"
	SeatPaid           SeatStatus = "PAID"
)

// Seat is one bookable unit on a vehicle.  A seat never moves to a
// different vehicle.  ReservationID is non-nil exactly when the status is
// PENDING_PAYMENT or PAID.
//
// Fields:
//
//	ID            – primary key identifier.
//	VehicleID     – owning vehicle.
//	Position      – ordinal 1..capacity.
//	Status        – current state.
//	ReservationID – owning reservation while occupied.
//	Version       – bumped on every status change.
type Seat struct {
	ID            uint64     `json:"id"`
	VehicleID     uint64     `json:"vehicle_id"`
	Position      int        `json:"position"`
	Status        SeatStatus `json:"status"`
	ReservationID *uint64    `json:"reservation_id,omitempty"`
	Version       uint32     `json:"version"`
}

// Occupied reports whether the seat is held by a reservation.
func (s Seat) Occupied() bool { return s.Status != SeatFree }

// SeatView is a seat annotated with its occupant, as returned by seat
// listings.
type SeatView struct {
	Seat
	ClientName    string        `json:"client_name,omitempty"`
	ClientContact string        `json:"client_contact,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
}
