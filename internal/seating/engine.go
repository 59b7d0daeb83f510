package seating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/queue"
)

const tracerName = "github.com/iliyamo/coop-transport-seating/internal/seating"

// Engine is the seat inventory, reservation manager and waiting queue of
// one tier.  All invariants on seats and reservations are enforced here
// and in the SeatStore it wraps; the Engine never talks to another
// tier's storage.
type Engine struct {
	tier   model.Tier
	store  SeatStore
	queue  WaitingQueue
	pub    Publisher
	log    *logrus.Entry
	tracer trace.Tracer
	now    func() time.Time

	// queueMu serializes waiting-queue mutations of this tier only.
	queueMu sync.Mutex
}

// Option customises an Engine.
type Option func(*Engine)

// WithPublisher sets the domain event publisher.
func WithPublisher(p Publisher) Option { return func(e *Engine) { e.pub = p } }

// WithLogger sets the logger; the tier is added to every entry.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = l.WithField("tier", string(e.tier)) }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine binds an engine to the storage of one tier.  Both store and
// waiting queue must be non-nil.
func NewEngine(store SeatStore, wq WaitingQueue, opts ...Option) *Engine {
	if store == nil || wq == nil {
		panic("nil storage passed to seating.NewEngine")
	}
	e := &Engine{
		tier:   store.Tier(),
		store:  store,
		queue:  wq,
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
	}
	e.log = logrus.StandardLogger().WithField("tier", string(e.tier))
	for _, o := range opts {
		o(e)
	}
	return e
}

// Tier returns the tier this engine serves.
func (e *Engine) Tier() model.Tier { return e.tier }

// ReserveRequest asks for a group of seats on behalf of one client.
type ReserveRequest struct {
	SeatIDs       []uint64
	ClientName    string
	ClientContact string
}

// EnqueueRequest adds a client to the waiting queue.
type EnqueueRequest struct {
	ClientName     string
	ClientContact  string
	RequestedSeats int
}

// ---- Vehicle registry ----

// CreateVehicle registers a vehicle and provisions capacity FREE seats
// numbered 1..capacity.
func (e *Engine) CreateVehicle(ctx context.Context, in model.NewVehicle) (*model.Vehicle, error) {
	ctx, span := e.start(ctx, "CreateVehicle")
	defer span.End()

	in.Itinerary = strings.TrimSpace(in.Itinerary)
	if in.Itinerary == "" {
		return nil, e.fail(span, "create vehicle", invalid("itinerary is required"))
	}
	if in.Capacity <= 0 {
		return nil, e.fail(span, "create vehicle", invalid("capacity must be positive"))
	}
	if in.DepartureAt.IsZero() {
		return nil, e.fail(span, "create vehicle", invalid("departure time is required"))
	}
	in.DepartureAt = in.DepartureAt.UTC()
	v, _, err := e.store.CreateVehicle(ctx, in)
	if err != nil {
		return nil, e.fail(span, "create vehicle", err)
	}
	span.SetAttributes(attribute.Int64("seating.vehicle_id", int64(v.ID)))
	e.log.WithFields(logrus.Fields{"vehicle_id": v.ID, "capacity": v.Capacity, "itinerary": v.Itinerary}).Info("vehicle created")
	e.publish(ctx, queue.EventVehicleCreated, vehiclePayload(v))
	return v, nil
}

// Vehicle returns one vehicle.
func (e *Engine) Vehicle(ctx context.Context, id uint64) (*model.Vehicle, error) {
	if id == 0 {
		return nil, invalid("vehicle id is required")
	}
	return e.store.Vehicle(ctx, id)
}

// Vehicles lists vehicles ordered by departure time.  Departed vehicles
// are excluded unless includeDeparted is set.
func (e *Engine) Vehicles(ctx context.Context, includeDeparted bool) ([]model.Vehicle, error) {
	all, err := e.store.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	if includeDeparted {
		return all, nil
	}
	out := make([]model.Vehicle, 0, len(all))
	for _, v := range all {
		if !v.Departed {
			out = append(out, v)
		}
	}
	return out, nil
}

// Depart marks the vehicle as departed.  It happens exactly once: a
// second call fails with ErrVehicleDeparted.  From then on no seat of the
// vehicle changes state.
func (e *Engine) Depart(ctx context.Context, vehicleID uint64) (*model.Vehicle, error) {
	ctx, span := e.start(ctx, "Depart", attribute.Int64("seating.vehicle_id", int64(vehicleID)))
	defer span.End()

	if vehicleID == 0 {
		return nil, e.fail(span, "depart", invalid("vehicle id is required"))
	}
	v, err := e.store.Depart(ctx, vehicleID, e.now())
	if err != nil {
		return nil, e.fail(span, "depart", err)
	}
	e.log.WithFields(logrus.Fields{"vehicle_id": v.ID, "capacity": v.Capacity}).Info("vehicle departed")
	e.publish(ctx, queue.EventVehicleDeparted, vehiclePayload(v))
	return v, nil
}

// ---- Seat inventory ----

// Grow appends n FREE seats to the vehicle and returns them.
func (e *Engine) Grow(ctx context.Context, vehicleID uint64, n int) ([]model.Seat, error) {
	ctx, span := e.start(ctx, "Grow", attribute.Int64("seating.vehicle_id", int64(vehicleID)), attribute.Int("seating.count", n))
	defer span.End()

	if vehicleID == 0 {
		return nil, e.fail(span, "grow", invalid("vehicle id is required"))
	}
	if n <= 0 {
		return nil, e.fail(span, "grow", invalid("seat count must be positive"))
	}
	seats, err := e.store.AddSeats(ctx, vehicleID, n)
	if err != nil {
		return nil, e.fail(span, "grow", err)
	}
	capacity := 0
	if len(seats) > 0 {
		capacity = seats[len(seats)-1].Position
	}
	e.log.WithFields(logrus.Fields{"vehicle_id": vehicleID, "added": n, "capacity": capacity}).Info("seat pool grown")
	e.publish(ctx, queue.EventSeatsGrown, queue.SeatsPayload{VehicleID: vehicleID, SeatIDs: seatIDs(seats), Capacity: capacity})
	return seats, nil
}

// RemoveSeat deletes a FREE seat of a vehicle that has not departed.
// The remaining seats are renumbered so positions stay 1..capacity.
func (e *Engine) RemoveSeat(ctx context.Context, seatID uint64) (*model.Seat, error) {
	ctx, span := e.start(ctx, "RemoveSeat", attribute.Int64("seating.seat_id", int64(seatID)))
	defer span.End()

	if seatID == 0 {
		return nil, e.fail(span, "remove seat", invalid("seat id is required"))
	}
	seat, err := e.store.DeleteSeat(ctx, seatID)
	if err != nil {
		return nil, e.fail(span, "remove seat", err)
	}
	e.log.WithFields(logrus.Fields{"vehicle_id": seat.VehicleID, "seat_id": seat.ID}).Info("seat removed")
	e.publish(ctx, queue.EventSeatRemoved, queue.SeatsPayload{VehicleID: seat.VehicleID, SeatIDs: []uint64{seat.ID}})
	return seat, nil
}

// Inventory returns the vehicle with its seats and live reservations.
func (e *Engine) Inventory(ctx context.Context, vehicleID uint64) (*model.Inventory, error) {
	if vehicleID == 0 {
		return nil, invalid("vehicle id is required")
	}
	return e.store.Inventory(ctx, vehicleID)
}

// Seats lists the seats of a vehicle by position, each annotated with its
// occupant when held.  It has no side effects.
func (e *Engine) Seats(ctx context.Context, vehicleID uint64) ([]model.SeatView, error) {
	inv, err := e.Inventory(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return SeatViews(inv), nil
}

// SeatViews joins seats with the reservations holding them.
func SeatViews(inv *model.Inventory) []model.SeatView {
	byID := make(map[uint64]model.Reservation, len(inv.Reservations))
	for _, r := range inv.Reservations {
		byID[r.ID] = r
	}
	out := make([]model.SeatView, 0, len(inv.Seats))
	for _, s := range inv.Seats {
		v := model.SeatView{Seat: s}
		if s.ReservationID != nil {
			if r, ok := byID[*s.ReservationID]; ok {
				v.ClientName = r.ClientName
				v.ClientContact = r.ClientContact
				v.PaymentStatus = r.PaymentStatus
			}
		}
		out = append(out, v)
	}
	return out
}

// ---- Reservation manager ----

// TryReserve assigns every requested seat to one client, or none of them.
// Validation failures are reported before any shared state is touched;
// contention is reported as a *model.SeatConflictError listing the seats
// that were not FREE.
func (e *Engine) TryReserve(ctx context.Context, req ReserveRequest) (*model.Reservation, error) {
	ctx, span := e.start(ctx, "TryReserve")
	defer span.End()
	res, err := e.reserve(ctx, span, req)
	if err != nil {
		return nil, e.fail(span, "reserve", err)
	}
	return res, nil
}

func (e *Engine) reserve(ctx context.Context, span trace.Span, req ReserveRequest) (*model.Reservation, error) {
	ids, err := normalizeSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.ClientName)
	contact := strings.TrimSpace(req.ClientContact)
	if name == "" {
		return nil, invalid("client name is required")
	}
	if contact == "" {
		return nil, invalid("client contact is required")
	}
	vehicleID, err := e.vehicleOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("seating.vehicle_id", int64(vehicleID)), attribute.Int("seating.count", len(ids)))

	res := &model.Reservation{
		Tier:          e.tier,
		VehicleID:     vehicleID,
		ClientName:    name,
		ClientContact: contact,
		PaymentStatus: model.PaymentToCollect,
		CreatedAt:     e.now(),
	}
	if err := e.store.Reserve(ctx, vehicleID, ids, res); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"vehicle_id":     vehicleID,
		"reservation_id": res.ID,
		"seat_ids":       res.SeatIDs,
	}).Info("seats reserved")
	e.publish(ctx, queue.EventSeatsReserved, reservationPayload(res))
	out := res.Clone()
	return &out, nil
}

// ConfirmPayment moves every seat of the reservation to PAID.  Confirming
// an already paid reservation is a successful no-op.
func (e *Engine) ConfirmPayment(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	ctx, span := e.start(ctx, "ConfirmPayment", attribute.Int64("seating.reservation_id", int64(reservationID)))
	defer span.End()

	if reservationID == 0 {
		return nil, e.fail(span, "confirm payment", invalid("reservation id is required"))
	}
	res, changed, err := e.store.ConfirmPayment(ctx, reservationID, e.now())
	if err != nil {
		return nil, e.fail(span, "confirm payment", err)
	}
	if changed {
		e.log.WithFields(logrus.Fields{"vehicle_id": res.VehicleID, "reservation_id": res.ID}).Info("payment confirmed")
		e.publish(ctx, queue.EventPaymentConfirmed, reservationPayload(res))
	}
	return res, nil
}

// ReleaseSeats frees the given seats.  Reservations left without seats
// are deleted.  Every seat must currently be held; a FREE seat yields
// ErrNotFound and nothing is released.
func (e *Engine) ReleaseSeats(ctx context.Context, seatIDs []uint64) ([]model.SeatRelease, error) {
	ctx, span := e.start(ctx, "ReleaseSeats")
	defer span.End()

	ids, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return nil, e.fail(span, "release seats", err)
	}
	vehicleID, err := e.vehicleOf(ctx, ids)
	if err != nil {
		return nil, e.fail(span, "release seats", err)
	}
	span.SetAttributes(attribute.Int64("seating.vehicle_id", int64(vehicleID)))
	releases, err := e.store.ReleaseSeats(ctx, vehicleID, ids)
	if err != nil {
		return nil, e.fail(span, "release seats", err)
	}
	e.log.WithFields(logrus.Fields{"vehicle_id": vehicleID, "seat_ids": ids}).Info("seats released")
	e.publish(ctx, queue.EventSeatsReleased, queue.ReleasePayload{Releases: releases})
	return releases, nil
}

// ReleaseReservation frees every seat of a reservation and deletes it.
func (e *Engine) ReleaseReservation(ctx context.Context, reservationID uint64) (*model.SeatRelease, error) {
	ctx, span := e.start(ctx, "ReleaseReservation", attribute.Int64("seating.reservation_id", int64(reservationID)))
	defer span.End()

	if reservationID == 0 {
		return nil, e.fail(span, "release reservation", invalid("reservation id is required"))
	}
	rel, err := e.store.ReleaseReservation(ctx, reservationID)
	if err != nil {
		return nil, e.fail(span, "release reservation", err)
	}
	e.log.WithFields(logrus.Fields{"vehicle_id": rel.VehicleID, "reservation_id": rel.ReservationID, "seat_ids": rel.SeatIDs}).Info("reservation released")
	e.publish(ctx, queue.EventSeatsReleased, queue.ReleasePayload{Releases: []model.SeatRelease{*rel}})
	return rel, nil
}

// Reservation returns one live reservation.
func (e *Engine) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	if id == 0 {
		return nil, invalid("reservation id is required")
	}
	return e.store.Reservation(ctx, id)
}

// Reservations lists every live reservation of the tier.
func (e *Engine) Reservations(ctx context.Context) ([]model.Reservation, error) {
	return e.store.Reservations(ctx)
}

// Snapshot returns a consistent copy of the tier for read projections.
func (e *Engine) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	return e.store.Snapshot(ctx)
}

// ---- Waiting queue ----

// Enqueue appends a client to the waiting queue and returns the entry
// with its 1-based position.
func (e *Engine) Enqueue(ctx context.Context, req EnqueueRequest) (*model.QueueEntry, int, error) {
	ctx, span := e.start(ctx, "Enqueue")
	defer span.End()

	entry := &model.QueueEntry{
		Tier:           e.tier,
		ClientName:     strings.TrimSpace(req.ClientName),
		ClientContact:  strings.TrimSpace(req.ClientContact),
		RequestedSeats: req.RequestedSeats,
	}
	if entry.ClientName == "" {
		return nil, 0, e.fail(span, "enqueue", invalid("client name is required"))
	}
	if entry.ClientContact == "" {
		return nil, 0, e.fail(span, "enqueue", invalid("client contact is required"))
	}
	if entry.RequestedSeats <= 0 {
		return nil, 0, e.fail(span, "enqueue", invalid("requested seat count must be positive"))
	}

	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	// Stamped under the lock so timestamp order matches append order.
	entry.EnqueuedAt = e.now()
	if err := e.queue.Append(ctx, entry); err != nil {
		return nil, 0, e.fail(span, "enqueue", err)
	}
	pos, err := e.position(ctx, entry.ID)
	if err != nil {
		return nil, 0, e.fail(span, "enqueue", err)
	}
	e.log.WithFields(logrus.Fields{"entry_id": entry.ID, "position": pos, "requested": entry.RequestedSeats}).Info("client enqueued")
	e.publish(ctx, queue.EventQueueEnqueued, queuePayload(entry, pos, 0))
	return entry, pos, nil
}

// Queue lists waiting entries oldest first.
func (e *Engine) Queue(ctx context.Context) ([]model.QueueEntry, error) {
	return e.queue.Entries(ctx)
}

// Position returns the 1-based position of an entry.
func (e *Engine) Position(ctx context.Context, entryID uint64) (int, error) {
	return e.position(ctx, entryID)
}

func (e *Engine) position(ctx context.Context, entryID uint64) (int, error) {
	entries, err := e.queue.Entries(ctx)
	if err != nil {
		return 0, err
	}
	for i, en := range entries {
		if en.ID == entryID {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: queue entry %d", model.ErrNotFound, entryID)
}

// Promote seats a waiting client on the given seats.  The entry leaves
// the queue only if the reservation succeeds; otherwise it keeps its
// position.  Promotion is always an explicit operator action: releasing
// seats never promotes anyone automatically.  When the entry cannot be
// removed and the reservation cannot be undone either, the error is a
// *PromotionError naming both.
func (e *Engine) Promote(ctx context.Context, entryID uint64, seatIDs []uint64) (*model.Reservation, error) {
	ctx, span := e.start(ctx, "Promote", attribute.Int64("seating.entry_id", int64(entryID)))
	defer span.End()

	if entryID == 0 {
		return nil, e.fail(span, "promote", invalid("queue entry id is required"))
	}

	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	entry, err := e.queue.Entry(ctx, entryID)
	if err != nil {
		return nil, e.fail(span, "promote", err)
	}
	if n := len(seatIDs); n != entry.RequestedSeats {
		e.log.WithFields(logrus.Fields{"entry_id": entryID, "requested": entry.RequestedSeats, "given": n}).Warn("promoting with a different seat count than requested")
	}
	res, err := e.reserve(ctx, span, ReserveRequest{
		SeatIDs:       seatIDs,
		ClientName:    entry.ClientName,
		ClientContact: entry.ClientContact,
	})
	if err != nil {
		return nil, e.fail(span, "promote", err)
	}
	if err := e.queue.Remove(ctx, entryID); err != nil {
		// Another process promoted or withdrew the entry meanwhile; undo
		// our reservation so the client is not seated twice.
		if _, relErr := e.store.ReleaseReservation(ctx, res.ID); relErr != nil {
			e.log.WithError(relErr).WithFields(logrus.Fields{"entry_id": entryID, "reservation_id": res.ID}).Error("failed to undo promotion reservation")
			span.RecordError(relErr)
			span.SetStatus(codes.Error, relErr.Error())
			return nil, &PromotionError{EntryID: entryID, ReservationID: res.ID, RemoveErr: err, UndoErr: relErr}
		}
		return nil, e.fail(span, "promote", err)
	}
	e.log.WithFields(logrus.Fields{"entry_id": entryID, "reservation_id": res.ID}).Info("queue entry promoted")
	e.publish(ctx, queue.EventQueuePromoted, queuePayload(entry, 0, res.ID))
	return res, nil
}

// PromotionError reports a promotion that reserved seats but could
// neither remove the queue entry nor release the reservation again,
// typically because the vehicle departed in between.  The reservation
// stands and the entry may still be queued; an operator must withdraw
// the entry or cancel the reservation.
type PromotionError struct {
	EntryID       uint64
	ReservationID uint64
	RemoveErr     error
	UndoErr       error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("promote entry %d: reservation %d kept but entry not removed (%v; undo: %v)",
		e.EntryID, e.ReservationID, e.RemoveErr, e.UndoErr)
}

func (e *PromotionError) Unwrap() []error { return []error{e.RemoveErr, e.UndoErr} }

// Withdraw removes an entry without seating the client.
func (e *Engine) Withdraw(ctx context.Context, entryID uint64) error {
	ctx, span := e.start(ctx, "Withdraw", attribute.Int64("seating.entry_id", int64(entryID)))
	defer span.End()

	if entryID == 0 {
		return e.fail(span, "withdraw", invalid("queue entry id is required"))
	}
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	entry, err := e.queue.Entry(ctx, entryID)
	if err != nil {
		return e.fail(span, "withdraw", err)
	}
	if err := e.queue.Remove(ctx, entryID); err != nil {
		return e.fail(span, "withdraw", err)
	}
	e.log.WithField("entry_id", entryID).Info("queue entry withdrawn")
	e.publish(ctx, queue.EventQueueWithdrawn, queuePayload(entry, 0, 0))
	return nil
}

// ---- helpers ----

// vehicleOf resolves the seats and checks they all belong to one vehicle.
func (e *Engine) vehicleOf(ctx context.Context, ids []uint64) (uint64, error) {
	seats, err := e.store.SeatsByID(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(seats) == 0 {
		return 0, fmt.Errorf("%w: seats %v", model.ErrNotFound, ids)
	}
	vehicleID := seats[0].VehicleID
	for _, s := range seats[1:] {
		if s.VehicleID != vehicleID {
			return 0, invalid("seats belong to different vehicles")
		}
	}
	return vehicleID, nil
}

// normalizeSeatIDs drops duplicates while keeping request order.
func normalizeSeatIDs(ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, invalid("seat_ids is required")
	}
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			return nil, invalid("seat ids must be positive")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func invalid(msg string) error { return fmt.Errorf("%w: %s", model.ErrInvalidArgument, msg) }

// IsDomainError reports whether err belongs to the seating error
// taxonomy, i.e. an expected outcome rather than an infrastructure fault.
func IsDomainError(err error) bool {
	return errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrSeatConflict) ||
		errors.Is(err, model.ErrInvalidArgument) ||
		errors.Is(err, model.ErrVehicleDeparted)
}

func (e *Engine) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("seating.tier", string(e.tier)))
	return e.tracer.Start(ctx, "seating."+op, trace.WithAttributes(attrs...))
}

// fail records err on the span and logs infrastructure faults.  Domain
// errors are expected outcomes and only logged at debug level.
func (e *Engine) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	if IsDomainError(err) {
		e.log.WithError(err).Debugf("%s rejected", op)
		return err
	}
	span.SetStatus(codes.Error, err.Error())
	e.log.WithError(err).Errorf("%s failed", op)
	return fmt.Errorf("%s: %w", op, err)
}

func (e *Engine) publish(ctx context.Context, typ queue.EventType, payload any) {
	if e.pub == nil {
		return
	}
	ev, err := queue.NewEvent(e.tier, typ, OperatorFrom(ctx), payload)
	if err != nil {
		e.log.WithError(err).WithField("event", typ).Warn("encode event failed")
		return
	}
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.log.WithError(err).WithField("event", typ).Warn("publish event failed")
	}
}

func seatIDs(seats []model.Seat) []uint64 {
	out := make([]uint64, len(seats))
	for i, s := range seats {
		out[i] = s.ID
	}
	return out
}

func vehiclePayload(v *model.Vehicle) queue.VehiclePayload {
	return queue.VehiclePayload{
		VehicleID:   v.ID,
		Itinerary:   v.Itinerary,
		DepartureAt: v.DepartureAt,
		Capacity:    v.Capacity,
		DepartedAt:  v.DepartedAt,
	}
}

func reservationPayload(r *model.Reservation) queue.ReservationPayload {
	return queue.ReservationPayload{
		ReservationID: r.ID,
		VehicleID:     r.VehicleID,
		ClientName:    r.ClientName,
		ClientContact: r.ClientContact,
		SeatIDs:       r.SeatIDs,
		PaymentStatus: r.PaymentStatus,
	}
}

func queuePayload(en *model.QueueEntry, pos int, reservationID uint64) queue.QueuePayload {
	return queue.QueuePayload{
		EntryID:        en.ID,
		ClientName:     en.ClientName,
		ClientContact:  en.ClientContact,
		RequestedSeats: en.RequestedSeats,
		Position:       pos,
		ReservationID:  reservationID,
	}
}
