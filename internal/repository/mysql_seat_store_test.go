package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

var seatCols = []string{"id", "vehicle_id", "position", "status", "reservation_id", "version"}

func newMySQLStore(t *testing.T, tier model.Tier) (*MySQLSeatStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLSeatStore(db, tier), mock
}

func sq(s string) string { return regexp.QuoteMeta(s) }

func newReservation() *model.Reservation {
	return &model.Reservation{
		ClientName:    "Rakoto",
		ClientContact: "034 11 111 11",
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestMySQLReserve(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR SHARE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE id IN (?, ?) ORDER BY position FOR UPDATE SKIP LOCKED")).
		WithArgs(12, 11).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(11, 7, 1, "FREE", nil, 0).
			AddRow(12, 7, 2, "FREE", nil, 3))
	mock.ExpectExec(sq("INSERT INTO reservations (vehicle_id, client_name, client_contact, payment_status, created_at)")).
		WithArgs(7, "Rakoto", "034 11 111 11", "TO_COLLECT", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectExec(sq("UPDATE seats SET status = ?, reservation_id = ?, version = version + 1 WHERE id IN (?, ?) AND status = 'FREE'")).
		WithArgs("PENDING_PAYMENT", 40, 12, 11).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res := newReservation()
	require.NoError(t, store.Reserve(context.Background(), 7, []uint64{12, 11}, res))
	assert.Equal(t, uint64(40), res.ID)
	assert.Equal(t, uint64(7), res.VehicleID)
	assert.Equal(t, []uint64{11, 12}, res.SeatIDs)
	assert.Equal(t, model.PaymentToCollect, res.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLReserve_Conflict(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR SHARE")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	// Seat 13 is locked by another transaction and skipped; seat 12 is held.
	mock.ExpectQuery(sq("FOR UPDATE SKIP LOCKED")).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(11, 7, 1, "FREE", nil, 0).
			AddRow(12, 7, 2, "PAID", 3, 2))
	mock.ExpectRollback()

	err := store.Reserve(context.Background(), 7, []uint64{11, 12, 13}, newReservation())
	require.ErrorIs(t, err, model.ErrSeatConflict)
	assert.Equal(t, []uint64{12, 13}, model.ConflictingSeats(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLReserve_GuardedUpdateLosesRace(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FOR UPDATE SKIP LOCKED")).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(11, 7, 1, "FREE", nil, 0))
	mock.ExpectExec(sq("INSERT INTO reservations")).WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec(sq("UPDATE seats SET status = ?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Reserve(context.Background(), 7, []uint64{11}, newReservation())
	assert.ErrorIs(t, err, model.ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLReserve_LockContention(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles")).
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()

	err := store.Reserve(context.Background(), 7, []uint64{11, 12}, newReservation())
	require.ErrorIs(t, err, model.ErrSeatConflict)
	assert.Equal(t, []uint64{11, 12}, model.ConflictingSeats(err))
}

func TestMySQLReserve_Departed(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierVIP)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles_vip WHERE id = ? FOR SHARE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(true))
	mock.ExpectRollback()

	err := store.Reserve(context.Background(), 3, []uint64{1}, newReservation())
	assert.ErrorIs(t, err, model.ErrVehicleDeparted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLReserve_UnknownVehicle(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}))
	mock.ExpectRollback()

	err := store.Reserve(context.Background(), 99, []uint64{1}, newReservation())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMySQLDepart(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)
	at := time.Date(2026, 3, 1, 6, 5, 0, 0, time.UTC)
	vehicleCols := []string{"id", "itinerary", "departure_at", "departed", "departed_at", "created_at", "capacity"}

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectExec(sq("UPDATE vehicles SET departed = 1, departed_at = ? WHERE id = ?")).
		WithArgs(at, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sq("FROM vehicles v WHERE v.id = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(vehicleCols).AddRow(7, "Antananarivo - Fianarantsoa", at, true, at, at, 18))
	mock.ExpectCommit()

	v, err := store.Depart(context.Background(), 7, at)
	require.NoError(t, err)
	assert.True(t, v.Departed)
	assert.Equal(t, 18, v.Capacity)
	require.NotNil(t, v.DepartedAt)
	assert.Equal(t, at, *v.DepartedAt)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(true))
	mock.ExpectRollback()

	_, err = store.Depart(context.Background(), 7, at)
	assert.ErrorIs(t, err, model.ErrVehicleDeparted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLConfirmPayment_AlreadyPaid(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	paid := created.Add(time.Hour)

	mock.ExpectQuery(sq("SELECT vehicle_id FROM reservations WHERE id = ?")).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR SHARE")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE reservation_id = ? ORDER BY position FOR UPDATE")).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(11, 7, 1, "PAID", 40, 2))
	mock.ExpectQuery(sq("FROM reservations WHERE id = ? FOR UPDATE")).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "client_name", "client_contact", "payment_status", "created_at", "paid_at"}).
			AddRow(40, 7, "Rakoto", "034", "PAID", created, paid))
	mock.ExpectCommit()

	res, changed, err := store.ConfirmPayment(context.Background(), 40, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, model.PaymentPaid, res.PaymentStatus)
	assert.Equal(t, []uint64{11}, res.SeatIDs)
	assert.Equal(t, paid, *res.PaidAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLConfirmPayment(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	at := created.Add(time.Hour)

	mock.ExpectQuery(sq("SELECT vehicle_id FROM reservations")).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE reservation_id = ?")).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(11, 7, 1, "PENDING_PAYMENT", 40, 1))
	mock.ExpectQuery(sq("FROM reservations WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "client_name", "client_contact", "payment_status", "created_at", "paid_at"}).
			AddRow(40, 7, "Rakoto", "034", "TO_COLLECT", created, nil))
	mock.ExpectExec(sq("UPDATE seats SET status = ?, version = version + 1 WHERE reservation_id = ?")).
		WithArgs("PAID", 40).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sq("UPDATE reservations SET payment_status = ?, paid_at = ? WHERE id = ?")).
		WithArgs("PAID", at, 40).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, changed, err := store.ConfirmPayment(context.Background(), 40, at)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.PaymentPaid, res.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLReleaseSeats_DeletesEmptiedReservation(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE vehicle_id = ? AND id IN (?, ?) ORDER BY position FOR UPDATE")).
		WithArgs(7, 11, 12).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(11, 7, 1, "PAID", 40, 2).
			AddRow(12, 7, 2, "PENDING_PAYMENT", 41, 1))
	mock.ExpectExec(sq("UPDATE seats SET status = 'FREE', reservation_id = NULL, version = version + 1 WHERE id IN (?, ?)")).
		WithArgs(11, 12).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(sq("SELECT COUNT(*) FROM seats WHERE reservation_id = ?")).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(sq("DELETE FROM reservations WHERE id = ?")).
		WithArgs(40).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sq("SELECT COUNT(*) FROM seats WHERE reservation_id = ?")).
		WithArgs(41).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectCommit()

	rels, err := store.ReleaseSeats(context.Background(), 7, []uint64{11, 12})
	require.NoError(t, err)
	assert.Equal(t, []model.SeatRelease{
		{ReservationID: 40, VehicleID: 7, SeatIDs: []uint64{11}, Deleted: true},
		{ReservationID: 41, VehicleID: 7, SeatIDs: []uint64{12}, Deleted: false},
	}, rels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLReleaseSeats_FreeSeat(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE vehicle_id = ?")).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(11, 7, 1, "FREE", nil, 0))
	mock.ExpectRollback()

	_, err := store.ReleaseSeats(context.Background(), 7, []uint64{11})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDeleteSeat_Occupied(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectQuery(sq("SELECT vehicle_id FROM seats WHERE id = ?")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE id = ? AND vehicle_id = ?")).
		WithArgs(11, 7).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(11, 7, 1, "PENDING_PAYMENT", 40, 1))
	mock.ExpectRollback()

	_, err := store.DeleteSeat(context.Background(), 11)
	assert.ErrorIs(t, err, model.ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDeleteSeat_Renumbers(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)

	mock.ExpectQuery(sq("SELECT vehicle_id FROM seats WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("FROM seats WHERE id = ? AND vehicle_id = ?")).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(12, 7, 2, "FREE", nil, 0))
	mock.ExpectExec(sq("DELETE FROM seats WHERE id = ?")).WithArgs(12).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sq("UPDATE seats SET position = position - 1 WHERE vehicle_id = ? AND position > ? ORDER BY position")).
		WithArgs(7, 2).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	removed, err := store.DeleteSeat(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAddSeats(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierVIP)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("SELECT departed FROM vehicles_vip WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"departed"}).AddRow(false))
	mock.ExpectQuery(sq("SELECT COALESCE(MAX(position), 0) FROM seats_vip WHERE vehicle_id = ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(4))
	mock.ExpectExec(sq("INSERT INTO seats_vip (vehicle_id, position, status, version) VALUES (?, ?, ?, 0),(?, ?, ?, 0)")).
		WithArgs(3, 5, "FREE", 3, 6, "FREE").
		WillReturnResult(sqlmock.NewResult(20, 2))
	mock.ExpectQuery(sq("FROM seats_vip WHERE vehicle_id = ? AND position > ? ORDER BY position")).
		WithArgs(3, 4).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(20, 3, 5, "FREE", nil, 0).
			AddRow(21, 3, 6, "FREE", nil, 0))
	mock.ExpectCommit()

	seats, err := store.AddSeats(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, 6, seats[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSnapshot(t *testing.T) {
	store, mock := newMySQLStore(t, model.TierStandard)
	dep := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(sq("FROM vehicles v ORDER BY v.departure_at, v.id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "itinerary", "departure_at", "departed", "departed_at", "created_at", "capacity"}).
			AddRow(7, "Tana - Tamatave", dep, false, nil, dep, 2))
	mock.ExpectQuery(sq("FROM seats ORDER BY vehicle_id, position")).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(11, 7, 1, "PENDING_PAYMENT", 40, 1).
			AddRow(12, 7, 2, "FREE", nil, 0))
	mock.ExpectQuery(sq("FROM reservations ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "client_name", "client_contact", "payment_status", "created_at", "paid_at"}).
			AddRow(40, 7, "Rakoto", "034", "TO_COLLECT", dep, nil))
	mock.ExpectCommit()

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Vehicles, 1)
	assert.Len(t, snap.Seats[7], 2)
	require.Len(t, snap.Reservations, 1)
	assert.Equal(t, []uint64{11}, snap.Reservations[0].SeatIDs)
	assert.Equal(t, model.TierStandard, snap.Reservations[0].Tier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
