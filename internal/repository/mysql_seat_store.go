package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/coop-transport-seating/internal/database"
	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// MySQLSeatStore persists one tier in MySQL.  Every mutation runs in a
// transaction that first locks the vehicle row: shared for seat and
// reservation changes, exclusive for departure and seat pool changes.
// Departure therefore waits for in-flight assignments on the same vehicle
// and assignments started after it observe departed = 1.
//
// Seat assignment locks the requested seat rows with SKIP LOCKED and
// finishes with an UPDATE guarded by status = 'FREE'; a row held by a
// concurrent transaction is reported as a conflict instead of waited on.
type MySQLSeatStore struct {
	db   *sql.DB
	tier model.Tier
	t    database.Tables
	now  func() time.Time
}

// NewMySQLSeatStore binds a store to the tables of tier.
func NewMySQLSeatStore(db *sql.DB, tier model.Tier) *MySQLSeatStore {
	if db == nil {
		panic("nil db passed to NewMySQLSeatStore")
	}
	return &MySQLSeatStore{
		db:   db,
		tier: tier,
		t:    database.TablesFor(tier),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MySQLSeatStore) Tier() model.Tier { return r.tier }

// DB exposes the underlying handle (health checks).
func (r *MySQLSeatStore) DB() *sql.DB { return r.db }

func (r *MySQLSeatStore) q(query string) string { return r.t.Expand(query) }

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *MySQLSeatStore) withTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

var readOnly = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// lockVehicle locks the vehicle row and fails when it is missing or has
// departed.
func (r *MySQLSeatStore) lockVehicle(ctx context.Context, tx *sql.Tx, vehicleID uint64, exclusive bool) error {
	query := `SELECT departed FROM {vehicles} WHERE id = ? FOR SHARE`
	if exclusive {
		query = `SELECT departed FROM {vehicles} WHERE id = ? FOR UPDATE`
	}
	var departed bool
	if err := tx.QueryRowContext(ctx, r.q(query), vehicleID).Scan(&departed); err != nil {
		return notFound(err, "vehicle", vehicleID)
	}
	if departed {
		return fmt.Errorf("%w: vehicle %d", model.ErrVehicleDeparted, vehicleID)
	}
	return nil
}

// ---- vehicles ----

const vehicleColumns = `v.id, v.itinerary, v.departure_at, v.departed, v.departed_at, v.created_at,
	(SELECT COUNT(*) FROM {seats} s WHERE s.vehicle_id = v.id)`

func (r *MySQLSeatStore) scanVehicle(sc interface{ Scan(...any) error }) (model.Vehicle, error) {
	var (
		v          model.Vehicle
		departedAt sql.NullTime
	)
	if err := sc.Scan(&v.ID, &v.Itinerary, &v.DepartureAt, &v.Departed, &departedAt, &v.CreatedAt, &v.Capacity); err != nil {
		return v, err
	}
	v.Tier = r.tier
	v.DepartureAt = v.DepartureAt.UTC()
	v.CreatedAt = v.CreatedAt.UTC()
	if departedAt.Valid {
		t := departedAt.Time.UTC()
		v.DepartedAt = &t
	}
	return v, nil
}

func (r *MySQLSeatStore) vehicle(ctx context.Context, qr queryer, id uint64) (*model.Vehicle, error) {
	row := qr.QueryRowContext(ctx, r.q(`SELECT `+vehicleColumns+` FROM {vehicles} v WHERE v.id = ?`), id)
	v, err := r.scanVehicle(row)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	return &v, nil
}

func (r *MySQLSeatStore) vehicles(ctx context.Context, qr queryer) ([]model.Vehicle, error) {
	rows, err := qr.QueryContext(ctx, r.q(`SELECT `+vehicleColumns+` FROM {vehicles} v ORDER BY v.departure_at, v.id`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := r.scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *MySQLSeatStore) CreateVehicle(ctx context.Context, in model.NewVehicle) (*model.Vehicle, []model.Seat, error) {
	var (
		v     *model.Vehicle
		seats []model.Seat
	)
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.q(`INSERT INTO {vehicles} (itinerary, departure_at, created_at) VALUES (?, ?, ?)`),
			in.Itinerary, in.DepartureAt, r.now())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if seats, err = r.insertSeats(ctx, tx, uint64(id), 0, in.Capacity); err != nil {
			return err
		}
		v, err = r.vehicle(ctx, tx, uint64(id))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return v, seats, nil
}

// insertSeats appends n FREE seats after position last in one statement
// and returns them.
func (r *MySQLSeatStore) insertSeats(ctx context.Context, tx *sql.Tx, vehicleID uint64, last, n int) ([]model.Seat, error) {
	var b strings.Builder
	b.WriteString(r.q(`INSERT INTO {seats} (vehicle_id, position, status, version) VALUES `))
	args := make([]any, 0, n*3)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, 0)")
		args = append(args, vehicleID, last+i, model.SeatFree)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return nil, err
	}
	return r.querySeats(ctx, tx, `WHERE vehicle_id = ? AND position > ? ORDER BY position`, vehicleID, last)
}

func (r *MySQLSeatStore) Vehicle(ctx context.Context, id uint64) (*model.Vehicle, error) {
	return r.vehicle(ctx, r.db, id)
}

func (r *MySQLSeatStore) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	return r.vehicles(ctx, r.db)
}

func (r *MySQLSeatStore) Depart(ctx context.Context, vehicleID uint64, at time.Time) (*model.Vehicle, error) {
	var v *model.Vehicle
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, true); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.q(`UPDATE {vehicles} SET departed = 1, departed_at = ? WHERE id = ?`), at, vehicleID); err != nil {
			return err
		}
		var err error
		v, err = r.vehicle(ctx, tx, vehicleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ---- seats ----

const seatColumns = `id, vehicle_id, position, status, reservation_id, version`

func scanSeat(sc interface{ Scan(...any) error }) (model.Seat, error) {
	var (
		s   model.Seat
		rid sql.NullInt64
	)
	if err := sc.Scan(&s.ID, &s.VehicleID, &s.Position, &s.Status, &rid, &s.Version); err != nil {
		return s, err
	}
	if rid.Valid {
		id := uint64(rid.Int64)
		s.ReservationID = &id
	}
	return s, nil
}

// querySeats runs SELECT seatColumns FROM seats <tail>.
func (r *MySQLSeatStore) querySeats(ctx context.Context, qr queryer, tail string, args ...any) ([]model.Seat, error) {
	rows, err := qr.QueryContext(ctx, r.q(`SELECT `+seatColumns+` FROM {seats} `+tail), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *MySQLSeatStore) AddSeats(ctx context.Context, vehicleID uint64, n int) ([]model.Seat, error) {
	var added []model.Seat
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, true); err != nil {
			return err
		}
		var last int
		if err := tx.QueryRowContext(ctx, r.q(`SELECT COALESCE(MAX(position), 0) FROM {seats} WHERE vehicle_id = ?`), vehicleID).Scan(&last); err != nil {
			return err
		}
		var err error
		added, err = r.insertSeats(ctx, tx, vehicleID, last, n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (r *MySQLSeatStore) DeleteSeat(ctx context.Context, seatID uint64) (*model.Seat, error) {
	var vehicleID uint64
	if err := r.db.QueryRowContext(ctx, r.q(`SELECT vehicle_id FROM {seats} WHERE id = ?`), seatID).Scan(&vehicleID); err != nil {
		return nil, notFound(err, "seat", seatID)
	}
	var removed model.Seat
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, true); err != nil {
			return err
		}
		row := tx.QueryRowContext(ctx, r.q(`SELECT `+seatColumns+` FROM {seats} WHERE id = ? AND vehicle_id = ?`), seatID, vehicleID)
		var err error
		if removed, err = scanSeat(row); err != nil {
			return notFound(err, "seat", seatID)
		}
		if removed.Occupied() {
			return model.NewSeatConflict(seatID)
		}
		if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM {seats} WHERE id = ?`), seatID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, r.q(`UPDATE {seats} SET position = position - 1 WHERE vehicle_id = ? AND position > ? ORDER BY position`),
			vehicleID, removed.Position)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func (r *MySQLSeatStore) SeatsByID(ctx context.Context, ids []uint64) ([]model.Seat, error) {
	seats, err := r.querySeats(ctx, r.db, `WHERE id IN (`+placeholders(len(ids))+`)`, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}
	out := make([]model.Seat, 0, len(ids))
	var missing []uint64
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, s)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: seats %v", model.ErrNotFound, missing)
	}
	return out, nil
}

func (r *MySQLSeatStore) Inventory(ctx context.Context, vehicleID uint64) (*model.Inventory, error) {
	inv := &model.Inventory{}
	err := r.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		v, err := r.vehicle(ctx, tx, vehicleID)
		if err != nil {
			return err
		}
		inv.Vehicle = *v
		if inv.Seats, err = r.querySeats(ctx, tx, `WHERE vehicle_id = ? ORDER BY position`, vehicleID); err != nil {
			return err
		}
		inv.Reservations, err = r.queryReservations(ctx, tx, `WHERE vehicle_id = ? ORDER BY created_at, id`, vehicleID)
		if err != nil {
			return err
		}
		attachSeats(inv.Reservations, inv.Seats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ---- reservations ----

const reservationColumns = `id, vehicle_id, client_name, client_contact, payment_status, created_at, paid_at`

func (r *MySQLSeatStore) scanReservation(sc interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res    model.Reservation
		paidAt sql.NullTime
	)
	if err := sc.Scan(&res.ID, &res.VehicleID, &res.ClientName, &res.ClientContact, &res.PaymentStatus, &res.CreatedAt, &paidAt); err != nil {
		return res, err
	}
	res.Tier = r.tier
	res.CreatedAt = res.CreatedAt.UTC()
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		res.PaidAt = &t
	}
	return res, nil
}

func (r *MySQLSeatStore) queryReservations(ctx context.Context, qr queryer, tail string, args ...any) ([]model.Reservation, error) {
	rows, err := qr.QueryContext(ctx, r.q(`SELECT `+reservationColumns+` FROM {reservations} `+tail), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := r.scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// attachSeats fills SeatIDs from seats already ordered by position.
func attachSeats(rs []model.Reservation, seats []model.Seat) {
	idx := make(map[uint64]int, len(rs))
	for i := range rs {
		idx[rs[i].ID] = i
		rs[i].SeatIDs = []uint64{}
	}
	for _, s := range seats {
		if s.ReservationID == nil {
			continue
		}
		if i, ok := idx[*s.ReservationID]; ok {
			rs[i].SeatIDs = append(rs[i].SeatIDs, s.ID)
		}
	}
}

func (r *MySQLSeatStore) Reserve(ctx context.Context, vehicleID uint64, seatIDs []uint64, res *model.Reservation) error {
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, false); err != nil {
			return err
		}
		locked, err := r.querySeats(ctx, tx, `WHERE id IN (`+placeholders(len(seatIDs))+`) ORDER BY position FOR UPDATE SKIP LOCKED`,
			uint64Args(seatIDs)...)
		if err != nil {
			return err
		}
		got := make(map[uint64]model.Seat, len(locked))
		for _, s := range locked {
			if s.VehicleID != vehicleID {
				return fmt.Errorf("%w: seat %d on vehicle %d", model.ErrNotFound, s.ID, vehicleID)
			}
			got[s.ID] = s
		}
		var taken []uint64
		for _, id := range seatIDs {
			if s, ok := got[id]; !ok || s.Occupied() {
				taken = append(taken, id)
			}
		}
		if len(taken) > 0 {
			return model.NewSeatConflict(taken...)
		}

		ins, err := tx.ExecContext(ctx, r.q(`INSERT INTO {reservations} (vehicle_id, client_name, client_contact, payment_status, created_at) VALUES (?, ?, ?, ?, ?)`),
			vehicleID, res.ClientName, res.ClientContact, model.PaymentToCollect, res.CreatedAt)
		if err != nil {
			return err
		}
		id, err := ins.LastInsertId()
		if err != nil {
			return err
		}
		args := append([]any{model.SeatPendingPayment, id}, uint64Args(seatIDs)...)
		upd, err := tx.ExecContext(ctx, r.q(`UPDATE {seats} SET status = ?, reservation_id = ?, version = version + 1 WHERE id IN (`+
			placeholders(len(seatIDs))+`) AND status = 'FREE'`), args...)
		if err != nil {
			return err
		}
		if n, err := upd.RowsAffected(); err != nil {
			return err
		} else if n != int64(len(seatIDs)) {
			return model.NewSeatConflict(seatIDs...)
		}

		res.ID = uint64(id)
		res.Tier = r.tier
		res.VehicleID = vehicleID
		res.PaymentStatus = model.PaymentToCollect
		res.SeatIDs = make([]uint64, 0, len(locked))
		for _, s := range locked {
			res.SeatIDs = append(res.SeatIDs, s.ID)
		}
		return nil
	})
	if isLockContention(err) {
		return model.NewSeatConflict(seatIDs...)
	}
	return err
}

// reservationVehicle resolves the vehicle of a reservation without
// locking, so the transaction can lock the vehicle row first.
func (r *MySQLSeatStore) reservationVehicle(ctx context.Context, resID uint64) (uint64, error) {
	var vehicleID uint64
	err := r.db.QueryRowContext(ctx, r.q(`SELECT vehicle_id FROM {reservations} WHERE id = ?`), resID).Scan(&vehicleID)
	if err != nil {
		return 0, notFound(err, "reservation", resID)
	}
	return vehicleID, nil
}

// lockReservation locks the seats then the row of a reservation, in the
// same vehicle, seats, reservations order as every other mutation.
func (r *MySQLSeatStore) lockReservation(ctx context.Context, tx *sql.Tx, resID uint64) (model.Reservation, error) {
	seats, err := r.querySeats(ctx, tx, `WHERE reservation_id = ? ORDER BY position FOR UPDATE`, resID)
	if err != nil {
		return model.Reservation{}, err
	}
	row := tx.QueryRowContext(ctx, r.q(`SELECT `+reservationColumns+` FROM {reservations} WHERE id = ? FOR UPDATE`), resID)
	res, err := r.scanReservation(row)
	if err != nil {
		return res, notFound(err, "reservation", resID)
	}
	rs := []model.Reservation{res}
	attachSeats(rs, seats)
	return rs[0], nil
}

func (r *MySQLSeatStore) ConfirmPayment(ctx context.Context, resID uint64, at time.Time) (*model.Reservation, bool, error) {
	vehicleID, err := r.reservationVehicle(ctx, resID)
	if err != nil {
		return nil, false, err
	}
	var (
		res     model.Reservation
		changed bool
	)
	err = r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, false); err != nil {
			return err
		}
		var err error
		if res, err = r.lockReservation(ctx, tx, resID); err != nil {
			return err
		}
		if res.PaymentStatus == model.PaymentPaid {
			return nil
		}
		if _, err := tx.ExecContext(ctx, r.q(`UPDATE {seats} SET status = ?, version = version + 1 WHERE reservation_id = ?`),
			model.SeatPaid, resID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.q(`UPDATE {reservations} SET payment_status = ?, paid_at = ? WHERE id = ?`),
			model.PaymentPaid, at, resID); err != nil {
			return err
		}
		paidAt := at.UTC()
		res.PaymentStatus = model.PaymentPaid
		res.PaidAt = &paidAt
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &res, changed, nil
}

func (r *MySQLSeatStore) ReleaseSeats(ctx context.Context, vehicleID uint64, seatIDs []uint64) ([]model.SeatRelease, error) {
	var out []model.SeatRelease
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, false); err != nil {
			return err
		}
		args := append([]any{vehicleID}, uint64Args(seatIDs)...)
		seats, err := r.querySeats(ctx, tx, `WHERE vehicle_id = ? AND id IN (`+placeholders(len(seatIDs))+`) ORDER BY position FOR UPDATE`, args...)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return fmt.Errorf("%w: seats %v on vehicle %d", model.ErrNotFound, seatIDs, vehicleID)
		}
		byRes := make(map[uint64]*model.SeatRelease)
		var order []uint64
		for _, s := range seats {
			if s.ReservationID == nil {
				return fmt.Errorf("%w: seat %d is not reserved", model.ErrNotFound, s.ID)
			}
			rel, ok := byRes[*s.ReservationID]
			if !ok {
				rel = &model.SeatRelease{ReservationID: *s.ReservationID, VehicleID: vehicleID}
				byRes[rel.ReservationID] = rel
				order = append(order, rel.ReservationID)
			}
			rel.SeatIDs = append(rel.SeatIDs, s.ID)
		}
		if _, err := tx.ExecContext(ctx, r.q(`UPDATE {seats} SET status = 'FREE', reservation_id = NULL, version = version + 1 WHERE id IN (`+
			placeholders(len(seatIDs))+`)`), uint64Args(seatIDs)...); err != nil {
			return err
		}
		for _, rid := range order {
			rel := byRes[rid]
			var left int
			if err := tx.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM {seats} WHERE reservation_id = ?`), rid).Scan(&left); err != nil {
				return err
			}
			if left == 0 {
				if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM {reservations} WHERE id = ?`), rid); err != nil {
					return err
				}
				rel.Deleted = true
			}
			out = append(out, *rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MySQLSeatStore) ReleaseReservation(ctx context.Context, resID uint64) (*model.SeatRelease, error) {
	vehicleID, err := r.reservationVehicle(ctx, resID)
	if err != nil {
		return nil, err
	}
	rel := &model.SeatRelease{ReservationID: resID, VehicleID: vehicleID, Deleted: true}
	err = r.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := r.lockVehicle(ctx, tx, vehicleID, false); err != nil {
			return err
		}
		res, err := r.lockReservation(ctx, tx, resID)
		if err != nil {
			return err
		}
		rel.SeatIDs = res.SeatIDs
		if _, err := tx.ExecContext(ctx, r.q(`UPDATE {seats} SET status = 'FREE', reservation_id = NULL, version = version + 1 WHERE reservation_id = ?`), resID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, r.q(`DELETE FROM {reservations} WHERE id = ?`), resID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *MySQLSeatStore) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+reservationColumns+` FROM {reservations} WHERE id = ?`), id)
	res, err := r.scanReservation(row)
	if err != nil {
		return nil, notFound(err, "reservation", id)
	}
	seats, err := r.querySeats(ctx, r.db, `WHERE reservation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	rs := []model.Reservation{res}
	attachSeats(rs, seats)
	return &rs[0], nil
}

func (r *MySQLSeatStore) Reservations(ctx context.Context) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		var err error
		if out, err = r.queryReservations(ctx, tx, `ORDER BY created_at, id`); err != nil {
			return err
		}
		seats, err := r.querySeats(ctx, tx, `WHERE reservation_id IS NOT NULL ORDER BY vehicle_id, position`)
		if err != nil {
			return err
		}
		attachSeats(out, seats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot reads the whole tier inside one REPEATABLE READ transaction,
// so the three reads observe the same consistent view.
func (r *MySQLSeatStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{Tier: r.tier, TakenAt: r.now(), Seats: make(map[uint64][]model.Seat)}
	err := r.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		var err error
		if snap.Vehicles, err = r.vehicles(ctx, tx); err != nil {
			return err
		}
		seats, err := r.querySeats(ctx, tx, `ORDER BY vehicle_id, position`)
		if err != nil {
			return err
		}
		for _, s := range seats {
			snap.Seats[s.VehicleID] = append(snap.Seats[s.VehicleID], s)
		}
		if snap.Reservations, err = r.queryReservations(ctx, tx, `ORDER BY created_at, id`); err != nil {
			return err
		}
		attachSeats(snap.Reservations, seats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func uint64Args(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
