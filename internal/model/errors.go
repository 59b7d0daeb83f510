// Package model holds the seating domain types and the error taxonomy
// shared by the storage, engine and HTTP layers.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced vehicle, seat,
	// reservation or queue entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSeatConflict is returned when at least one requested seat is
	// not FREE at assignment time.  Nothing is ever partially applied.
	ErrSeatConflict = errors.New("seat conflict")

	// ErrInvalidArgument flags malformed requests: non-positive counts,
	// seats from several vehicles, mismatched tiers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrVehicleDeparted is returned for any mutation against a vehicle
	// that already departed.  Retrying cannot succeed.
	ErrVehicleDeparted = errors.New("vehicle departed")
)

// SeatConflictError lists the seats that were not FREE.  It matches
// ErrSeatConflict with errors.Is.
type SeatConflictError struct {
	SeatIDs []uint64
}

// NewSeatConflict builds a SeatConflictError with sorted seat ids.
func NewSeatConflict(seatIDs ...uint64) *SeatConflictError {
	ids := append([]uint64(nil), seatIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &SeatConflictError{SeatIDs: ids}
}

func (e *SeatConflictError) Error() string {
	if len(e.SeatIDs) == 0 {
		return ErrSeatConflict.Error()
	}
	parts := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		parts[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s: seats [%s] are not free", ErrSeatConflict, strings.Join(parts, ","))
}

func (e *SeatConflictError) Is(target error) bool { return target == ErrSeatConflict }

// ConflictingSeats extracts the seat ids carried by a conflict error, or
// nil when err is not a SeatConflictError.
func ConflictingSeats(err error) []uint64 {
	var ce *SeatConflictError
	if errors.As(err, &ce) {
		return ce.SeatIDs
	}
	return nil
}
