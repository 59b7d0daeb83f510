package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// MemorySeatStore keeps one tier's vehicles, seats and reservations in
// process memory.  Each vehicle has its own lock; every seat mutation and
// the departure of a vehicle run under that lock, so the check of a seat
// status and its update form one atomic step and departure cannot
// interleave with an assignment.  Operations on different vehicles never
// contend.
//
// Lock order is always vehicle lock first, then mu.
type MemorySeatStore struct {
	tier model.Tier
	now  func() time.Time

	mu       sync.RWMutex
	vehicles map[uint64]*vehicleSlot
	seatOf   map[uint64]uint64 // seat id -> vehicle id
	resOf    map[uint64]uint64 // reservation id -> vehicle id

	vehicleSeq     atomic.Uint64
	seatSeq        atomic.Uint64
	reservationSeq atomic.Uint64
}

type vehicleSlot struct {
	mu           sync.Mutex
	vehicle      model.Vehicle
	seats        []model.Seat // ordered by position
	reservations map[uint64]*model.Reservation
}

// NewMemorySeatStore returns an empty store for tier.
func NewMemorySeatStore(tier model.Tier) *MemorySeatStore {
	return &MemorySeatStore{
		tier:     tier,
		now:      func() time.Time { return time.Now().UTC() },
		vehicles: make(map[uint64]*vehicleSlot),
		seatOf:   make(map[uint64]uint64),
		resOf:    make(map[uint64]uint64),
	}
}

func (s *MemorySeatStore) Tier() model.Tier { return s.tier }

func (s *MemorySeatStore) slot(vehicleID uint64) (*vehicleSlot, error) {
	s.mu.RLock()
	sl, ok := s.vehicles[vehicleID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: vehicle %d", model.ErrNotFound, vehicleID)
	}
	return sl, nil
}

func (s *MemorySeatStore) CreateVehicle(_ context.Context, in model.NewVehicle) (*model.Vehicle, []model.Seat, error) {
	sl := &vehicleSlot{
		vehicle: model.Vehicle{
			ID:          s.vehicleSeq.Add(1),
			Tier:        s.tier,
			Itinerary:   in.Itinerary,
			DepartureAt: in.DepartureAt,
			CreatedAt:   s.now(),
		},
		reservations: make(map[uint64]*model.Reservation),
	}
	sl.seats = s.newSeats(sl.vehicle.ID, 1, in.Capacity)
	sl.vehicle.Capacity = len(sl.seats)

	s.mu.Lock()
	s.vehicles[sl.vehicle.ID] = sl
	for _, seat := range sl.seats {
		s.seatOf[seat.ID] = seat.VehicleID
	}
	s.mu.Unlock()

	v := sl.vehicle
	return &v, cloneSeats(sl.seats), nil
}

func (s *MemorySeatStore) newSeats(vehicleID uint64, firstPos, n int) []model.Seat {
	out := make([]model.Seat, n)
	for i := range out {
		out[i] = model.Seat{
			ID:        s.seatSeq.Add(1),
			VehicleID: vehicleID,
			Position:  firstPos + i,
			Status:    model.SeatFree,
		}
	}
	return out
}

func (s *MemorySeatStore) Vehicle(_ context.Context, id uint64) (*model.Vehicle, error) {
	sl, err := s.slot(id)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	v := sl.vehicle
	sl.mu.Unlock()
	return &v, nil
}

func (s *MemorySeatStore) Vehicles(_ context.Context) ([]model.Vehicle, error) {
	out := make([]model.Vehicle, 0)
	for _, sl := range s.slots() {
		sl.mu.Lock()
		out = append(out, sl.vehicle)
		sl.mu.Unlock()
	}
	sortVehicles(out)
	return out, nil
}

// slots returns every vehicle slot ordered by vehicle id.
func (s *MemorySeatStore) slots() []*vehicleSlot {
	s.mu.RLock()
	out := make([]*vehicleSlot, 0, len(s.vehicles))
	for _, sl := range s.vehicles {
		out = append(out, sl)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].vehicle.ID < out[j].vehicle.ID })
	return out
}

func (s *MemorySeatStore) Depart(_ context.Context, vehicleID uint64, at time.Time) (*model.Vehicle, error) {
	sl, err := s.slot(vehicleID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.vehicle.Departed {
		return nil, fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, vehicleID)
	}
	sl.vehicle.Departed = true
	sl.vehicle.DepartedAt = &at
	v := sl.vehicle
	return &v, nil
}

func (s *MemorySeatStore) AddSeats(_ context.Context, vehicleID uint64, n int) ([]model.Seat, error) {
	sl, err := s.slot(vehicleID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.vehicle.Departed {
		return nil, fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, vehicleID)
	}
	added := s.newSeats(vehicleID, len(sl.seats)+1, n)
	sl.seats = append(sl.seats, added...)
	sl.vehicle.Capacity = len(sl.seats)

	s.mu.Lock()
	for _, seat := range added {
		s.seatOf[seat.ID] = vehicleID
	}
	s.mu.Unlock()
	return cloneSeats(added), nil
}

func (s *MemorySeatStore) DeleteSeat(_ context.Context, seatID uint64) (*model.Seat, error) {
	s.mu.RLock()
	vehicleID, ok := s.seatOf[seatID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: seat %d", model.ErrNotFound, seatID)
	}
	sl, err := s.slot(vehicleID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.vehicle.Departed {
		return nil, fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, vehicleID)
	}
	idx := sl.indexOf(seatID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: seat %d", model.ErrNotFound, seatID)
	}
	removed := sl.seats[idx]
	if removed.Occupied() {
		return nil, model.NewSeatConflict(seatID)
	}
	sl.seats = append(sl.seats[:idx], sl.seats[idx+1:]...)
	for i := idx; i < len(sl.seats); i++ {
		sl.seats[i].Position = i + 1
	}
	sl.vehicle.Capacity = len(sl.seats)

	s.mu.Lock()
	delete(s.seatOf, seatID)
	s.mu.Unlock()
	return &removed, nil
}

func (s *MemorySeatStore) Inventory(_ context.Context, vehicleID uint64) (*model.Inventory, error) {
	sl, err := s.slot(vehicleID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.inventory(), nil
}

func (s *MemorySeatStore) SeatsByID(_ context.Context, ids []uint64) ([]model.Seat, error) {
	s.mu.RLock()
	owners := make(map[uint64]uint64, len(ids))
	var missing []uint64
	for _, id := range ids {
		vid, ok := s.seatOf[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		owners[id] = vid
	}
	s.mu.RUnlock()
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: seats %v", model.ErrNotFound, missing)
	}

	out := make([]model.Seat, 0, len(ids))
	for _, id := range ids {
		sl, err := s.slot(owners[id])
		if err != nil {
			return nil, err
		}
		sl.mu.Lock()
		idx := sl.indexOf(id)
		if idx >= 0 {
			out = append(out, sl.seats[idx])
		}
		sl.mu.Unlock()
		if idx < 0 {
			return nil, fmt.Errorf("%w: seat %d", model.ErrNotFound, id)
		}
	}
	return out, nil
}

func (s *MemorySeatStore) Reserve(_ context.Context, vehicleID uint64, seatIDs []uint64, res *model.Reservation) error {
	sl, err := s.slot(vehicleID)
	if err != nil {
		return err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.vehicle.Departed {
		return fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, vehicleID)
	}

	idxs := make([]int, 0, len(seatIDs))
	var taken []uint64
	for _, id := range seatIDs {
		idx := sl.indexOf(id)
		if idx < 0 {
			return fmt.Errorf("%w: seat %d on vehicle %d", model.ErrNotFound, id, vehicleID)
		}
		if sl.seats[idx].Occupied() {
			taken = append(taken, id)
		}
		idxs = append(idxs, idx)
	}
	if len(taken) > 0 {
		return model.NewSeatConflict(taken...)
	}

	sort.Ints(idxs)
	res.ID = s.reservationSeq.Add(1)
	res.Tier = s.tier
	res.VehicleID = vehicleID
	res.SeatIDs = make([]uint64, 0, len(idxs))
	for _, idx := range idxs {
		rid := res.ID
		seat := &sl.seats[idx]
		seat.Status = model.SeatPendingPayment
		seat.ReservationID = &rid
		seat.Version++
		res.SeatIDs = append(res.SeatIDs, seat.ID)
	}
	stored := res.Clone()
	sl.reservations[res.ID] = &stored

	s.mu.Lock()
	s.resOf[res.ID] = vehicleID
	s.mu.Unlock()
	return nil
}

func (s *MemorySeatStore) reservationSlot(resID uint64) (*vehicleSlot, error) {
	s.mu.RLock()
	vehicleID, ok := s.resOf[resID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d", model.ErrNotFound, resID)
	}
	return s.slot(vehicleID)
}

func (s *MemorySeatStore) ConfirmPayment(_ context.Context, resID uint64, at time.Time) (*model.Reservation, bool, error) {
	sl, err := s.reservationSlot(resID)
	if err != nil {
		return nil, false, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	res, ok := sl.reservations[resID]
	if !ok {
		return nil, false, fmt.Errorf("%w: reservation %d", model.ErrNotFound, resID)
	}
	if sl.vehicle.Departed {
		return nil, false, fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, sl.vehicle.ID)
	}
	if res.PaymentStatus == model.PaymentPaid {
		out := res.Clone()
		return &out, false, nil
	}
	for i := range sl.seats {
		seat := &sl.seats[i]
		if seat.ReservationID != nil && *seat.ReservationID == resID {
			seat.Status = model.SeatPaid
			seat.Version++
		}
	}
	res.PaymentStatus = model.PaymentPaid
	paidAt := at
	res.PaidAt = &paidAt
	out := res.Clone()
	return &out, true, nil
}

func (s *MemorySeatStore) ReleaseSeats(_ context.Context, vehicleID uint64, seatIDs []uint64) ([]model.SeatRelease, error) {
	sl, err := s.slot(vehicleID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.vehicle.Departed {
		return nil, fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, vehicleID)
	}

	idxs := make([]int, 0, len(seatIDs))
	for _, id := range seatIDs {
		idx := sl.indexOf(id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: seat %d on vehicle %d", model.ErrNotFound, id, vehicleID)
		}
		if !sl.seats[idx].Occupied() {
			return nil, fmt.Errorf("%w: seat %d is not reserved", model.ErrNotFound, id)
		}
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)

	byRes := make(map[uint64]*model.SeatRelease)
	var order []uint64
	for _, idx := range idxs {
		seat := &sl.seats[idx]
		rid := *seat.ReservationID
		rel, ok := byRes[rid]
		if !ok {
			rel = &model.SeatRelease{ReservationID: rid, VehicleID: vehicleID}
			byRes[rid] = rel
			order = append(order, rid)
		}
		rel.SeatIDs = append(rel.SeatIDs, seat.ID)
		freeSeat(seat)
	}

	out := make([]model.SeatRelease, 0, len(order))
	var emptied []uint64
	for _, rid := range order {
		rel := byRes[rid]
		if res, ok := sl.reservations[rid]; ok {
			res.SeatIDs = without(res.SeatIDs, rel.SeatIDs)
			if len(res.SeatIDs) == 0 {
				delete(sl.reservations, rid)
				rel.Deleted = true
				emptied = append(emptied, rid)
			}
		}
		out = append(out, *rel)
	}
	if len(emptied) > 0 {
		s.mu.Lock()
		for _, rid := range emptied {
			delete(s.resOf, rid)
		}
		s.mu.Unlock()
	}
	return out, nil
}

func (s *MemorySeatStore) ReleaseReservation(_ context.Context, resID uint64) (*model.SeatRelease, error) {
	sl, err := s.reservationSlot(resID)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	res, ok := sl.reservations[resID]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d", model.ErrNotFound, resID)
	}
	if sl.vehicle.Departed {
		return nil, fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, sl.vehicle.ID)
	}
	rel := &model.SeatRelease{ReservationID: resID, VehicleID: sl.vehicle.ID, Deleted: true}
	for i := range sl.seats {
		seat := &sl.seats[i]
		if seat.ReservationID != nil && *seat.ReservationID == resID {
			rel.SeatIDs = append(rel.SeatIDs, seat.ID)
			freeSeat(seat)
		}
	}
	delete(sl.reservations, res.ID)

	s.mu.Lock()
	delete(s.resOf, resID)
	s.mu.Unlock()
	return rel, nil
}

func (s *MemorySeatStore) Reservation(_ context.Context, id uint64) (*model.Reservation, error) {
	sl, err := s.reservationSlot(id)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	res, ok := sl.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d", model.ErrNotFound, id)
	}
	out := res.Clone()
	return &out, nil
}

func (s *MemorySeatStore) Reservations(_ context.Context) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for _, sl := range s.slots() {
		sl.mu.Lock()
		for _, r := range sl.reservations {
			out = append(out, r.Clone())
		}
		sl.mu.Unlock()
	}
	sortReservations(out)
	return out, nil
}

// Snapshot locks every vehicle in id order, copies the tier and only
// then releases the locks, so the copy reflects a single instant.
func (s *MemorySeatStore) Snapshot(_ context.Context) (*model.Snapshot, error) {
	slots := s.slots()
	for _, sl := range slots {
		sl.mu.Lock()
	}
	defer func() {
		for _, sl := range slots {
			sl.mu.Unlock()
		}
	}()

	snap := &model.Snapshot{
		Tier:     s.tier,
		TakenAt:  s.now(),
		Vehicles: make([]model.Vehicle, 0, len(slots)),
		Seats:    make(map[uint64][]model.Seat, len(slots)),
	}
	for _, sl := range slots {
		snap.Vehicles = append(snap.Vehicles, sl.vehicle)
		snap.Seats[sl.vehicle.ID] = cloneSeats(sl.seats)
		for _, r := range sl.reservations {
			snap.Reservations = append(snap.Reservations, r.Clone())
		}
	}
	sortVehicles(snap.Vehicles)
	sortReservations(snap.Reservations)
	return snap, nil
}

func (sl *vehicleSlot) indexOf(seatID uint64) int {
	for i := range sl.seats {
		if sl.seats[i].ID == seatID {
			return i
		}
	}
	return -1
}

func (sl *vehicleSlot) inventory() *model.Inventory {
	inv := &model.Inventory{
		Vehicle:      sl.vehicle,
		Seats:        cloneSeats(sl.seats),
		Reservations: make([]model.Reservation, 0, len(sl.reservations)),
	}
	for _, r := range sl.reservations {
		inv.Reservations = append(inv.Reservations, r.Clone())
	}
	sortReservations(inv.Reservations)
	return inv
}

func freeSeat(seat *model.Seat) {
	seat.Status = model.SeatFree
	seat.ReservationID = nil
	seat.Version++
}

func cloneSeats(in []model.Seat) []model.Seat {
	out := make([]model.Seat, len(in))
	for i, seat := range in {
		out[i] = seat
		if seat.ReservationID != nil {
			rid := *seat.ReservationID
			out[i].ReservationID = &rid
		}
	}
	return out
}

func without(ids, drop []uint64) []uint64 {
	gone := make(map[uint64]struct{}, len(drop))
	for _, id := range drop {
		gone[id] = struct{}{}
	}
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := gone[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func sortVehicles(vs []model.Vehicle) {
	sort.SliceStable(vs, func(i, j int) bool {
		if !vs[i].DepartureAt.Equal(vs[j].DepartureAt) {
			return vs[i].DepartureAt.Before(vs[j].DepartureAt)
		}
		return vs[i].ID < vs[j].ID
	})
}

func sortReservations(rs []model.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		return rs[i].ID < rs[j].ID
	})
}
