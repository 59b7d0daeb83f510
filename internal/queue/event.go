// Package queue defines the domain events exchanged over the message
// broker, the RabbitMQ publisher and the audit-log consumer.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// EventType names a seating event.  Combined with the tier it forms the
// routing key, e.g. "vip.seats.reserved".
type EventType string

const (
	EventVehicleCreated   EventType = "vehicle.created"
	EventVehicleDeparted  EventType = "vehicle.departed"
	EventSeatsGrown       EventType = "seats.grown"
	EventSeatRemoved      EventType = "seat.removed"
	EventSeatsReserved    EventType = "seats.reserved"
	EventPaymentConfirmed EventType = "payment.confirmed"
	EventSeatsReleased    EventType = "seats.released"
	EventQueueEnqueued    EventType = "queue.enqueued"
	EventQueuePromoted    EventType = "queue.promoted"
	EventQueueWithdrawn   EventType = "queue.withdrawn"
)

// Event is published after a seating mutation succeeded.  It carries
// enough information for downstream consumers (audit log, reporting,
// notifications) to act without reading the primary store.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	Tier       model.Tier      `json:"tier"`
	OccurredAt time.Time       `json:"occurred_at"`
	Operator   string          `json:"operator,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// RoutingKey returns "<tier>.<type>".
func (e Event) RoutingKey() string { return string(e.Tier) + "." + string(e.Type) }

// NewEvent stamps a fresh event id and encodes payload.
func NewEvent(tier model.Tier, typ EventType, operator string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Tier:       tier,
		OccurredAt: time.Now().UTC(),
		Operator:   operator,
		Payload:    body,
	}, nil
}

// VehiclePayload accompanies vehicle.created and vehicle.departed.
type VehiclePayload struct {
	VehicleID   uint64     `json:"vehicle_id"`
	Itinerary   string     `json:"itinerary"`
	DepartureAt time.Time  `json:"departure_at"`
	Capacity    int        `json:"capacity"`
	DepartedAt  *time.Time `json:"departed_at,omitempty"`
}

// SeatsPayload accompanies seats.grown and seat.removed.
type SeatsPayload struct {
	VehicleID uint64   `json:"vehicle_id"`
	SeatIDs   []uint64 `json:"seat_ids"`
	Capacity  int      `json:"capacity"`
}

// ReservationPayload accompanies seats.reserved and payment.confirmed.
type ReservationPayload struct {
	ReservationID uint64              `json:"reservation_id"`
	VehicleID     uint64              `json:"vehicle_id"`
	ClientName    string              `json:"client_name"`
	ClientContact string              `json:"client_contact"`
	SeatIDs       []uint64            `json:"seat_ids"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

// ReleasePayload accompanies seats.released.
type ReleasePayload struct {
	Releases []model.SeatRelease `json:"releases"`
}

// QueuePayload accompanies the queue.* events.  ReservationID is set on
// queue.promoted only.
type QueuePayload struct {
	EntryID        uint64 `json:"entry_id"`
	ClientName     string `json:"client_name"`
	ClientContact  string `json:"client_contact"`
	RequestedSeats int    `json:"requested_seats"`
	Position       int    `json:"position,omitempty"`
	ReservationID  uint64 `json:"reservation_id,omitempty"`
}
