// Package seating implements the seat inventory and waiting-queue engine
// of one tier.  Standard and VIP are two instances of the same Engine,
// each bound to its own SeatStore and WaitingQueue; Tiers routes a
// tier-qualified request to the right instance.
package seating

import (
	"context"
	"time"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/queue"
)

// SeatStore persists the vehicles, seats and reservations of a single
// tier.  Implementations own atomicity:
//
//   - Reserve is a compare-and-swap over the requested seats: it succeeds
//     only if every seat is FREE and the vehicle has not departed, and it
//     never blocks waiting for another reservation (contention surfaces
//     as model.ErrSeatConflict).
//   - Depart is mutually exclusive with Reserve, ReleaseSeats,
//     ReleaseReservation and ConfirmPayment on the same vehicle.
//   - Inventory and Snapshot return copies in which every seat has
//     exactly one state and agrees with the reservations returned.
type SeatStore interface {
	Tier() model.Tier

	CreateVehicle(ctx context.Context, in model.NewVehicle) (*model.Vehicle, []model.Seat, error)
	Vehicle(ctx context.Context, id uint64) (*model.Vehicle, error)
	Vehicles(ctx context.Context) ([]model.Vehicle, error)
	Depart(ctx context.Context, vehicleID uint64, at time.Time) (*model.Vehicle, error)

	AddSeats(ctx context.Context, vehicleID uint64, n int) ([]model.Seat, error)
	DeleteSeat(ctx context.Context, seatID uint64) (*model.Seat, error)
	Inventory(ctx context.Context, vehicleID uint64) (*model.Inventory, error)
	SeatsByID(ctx context.Context, seatIDs []uint64) ([]model.Seat, error)

	Reserve(ctx context.Context, vehicleID uint64, seatIDs []uint64, res *model.Reservation) error
	ConfirmPayment(ctx context.Context, reservationID uint64, at time.Time) (res *model.Reservation, changed bool, err error)
	ReleaseSeats(ctx context.Context, vehicleID uint64, seatIDs []uint64) ([]model.SeatRelease, error)
	ReleaseReservation(ctx context.Context, reservationID uint64) (*model.SeatRelease, error)
	Reservation(ctx context.Context, id uint64) (*model.Reservation, error)
	Reservations(ctx context.Context) ([]model.Reservation, error)

	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// WaitingQueue stores the FIFO waiting list of a single tier.  Append
// assigns ID, Seq and (when zero) EnqueuedAt.  Entries returns the list
// oldest first.
type WaitingQueue interface {
	Append(ctx context.Context, e *model.QueueEntry) error
	Entries(ctx context.Context) ([]model.QueueEntry, error)
	Entry(ctx context.Context, id uint64) (*model.QueueEntry, error)
	Remove(ctx context.Context, id uint64) error
}

// Publisher receives domain events after a mutation succeeded.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
