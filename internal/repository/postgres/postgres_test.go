package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/repository/postgres"
)

var (
	night = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	now   = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
)

var reservationCols = []string{"id", "user_id", "room_id", "num_rooms", "num_adult", "num_kid", "start_date", "end_date",
	"status", "expires_at", "transaction_id", "created_at", "updated_at"}

func newMockStore(t *testing.T, opts ...postgres.Option) (*postgres.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return postgres.NewStore(db, opts...), mock
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits and sets lock timeout", func(t *testing.T) {
		store, mock := newMockStore(t, postgres.WithLockTimeout(250*time.Millisecond))
		mock.ExpectBegin()
		mock.ExpectExec("SET LOCAL lock_timeout = '250ms'").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := store.WithTx(ctx, func(ctx context.Context) error { return nil })
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		store, mock := newMockStore(t)
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.WithTx(ctx, func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nested call joins outer transaction", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := store.WithTx(ctx, func(outer context.Context) error {
			return store.WithTx(outer, func(context.Context) error { return nil })
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInventoryRepository_GetOrCreateForUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO room_inventory").
			WithArgs(int64(1), night, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM room_inventory WHERE room_id = \\$1 AND stay_date = \\$2 FOR UPDATE").
			WithArgs(int64(1), night).
			WillReturnRows(sqlmock.NewRows([]string{"room_id", "stay_date", "total_quantity", "available_quantity", "updated_at"}).
				AddRow(1, night, 5, 3, now))
		mock.ExpectCommit()

		var entry *domain.LedgerEntry
		err := store.WithTx(ctx, func(ctx context.Context) error {
			var err error
			entry, err = store.GetOrCreateForUpdate(ctx, 1, night.Add(15*time.Hour), 5)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 5, entry.TotalQuantity)
		assert.Equal(t, 3, entry.AvailableQuantity)
		assert.True(t, entry.Date.Equal(night))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lock not available maps to lock timeout", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO room_inventory").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM room_inventory").
			WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
		mock.ExpectRollback()

		err := store.WithTx(ctx, func(ctx context.Context) error {
			_, err := store.GetOrCreateForUpdate(ctx, 1, night, 5)
			return err
		})
		assert.ErrorIs(t, err, domain.ErrLockTimeout)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Requires transaction", func(t *testing.T) {
		store, _ := newMockStore(t)
		_, err := store.GetOrCreateForUpdate(ctx, 1, night, 5)
		assert.Error(t, err)
	})
}

func TestInventoryRepository_Save(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE room_inventory SET total_quantity").
			WithArgs(5, 2, int64(1), night).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.Save(ctx, &domain.LedgerEntry{RoomID: 1, Date: night, TotalQuantity: 5, AvailableQuantity: 2})
		assert.NoError(t, err)
	})

	t.Run("Missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE room_inventory SET total_quantity").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Save(ctx, &domain.LedgerEntry{RoomID: 1, Date: night, TotalQuantity: 5, AvailableQuantity: 2})
		assert.Error(t, err)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepository_ListRange(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM room_inventory WHERE room_id = \\$1 AND stay_date >= \\$2 AND stay_date < \\$3").
		WithArgs(int64(1), night, night.AddDate(0, 0, 3)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "stay_date", "total_quantity", "available_quantity", "updated_at"}).
			AddRow(1, night, 5, 5, now).
			AddRow(1, night.AddDate(0, 0, 1), 5, 1, now))

	entries, err := store.ListRange(context.Background(), 1, night, night.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[1].AvailableQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Create(t *testing.T) {
	store, mock := newMockStore(t)
	expires := now.Add(30 * time.Second)
	res := &domain.Reservation{
		UserID: 7, RoomID: 1, Quantity: 2, Adults: 2, Children: 1,
		StayStart: night, StayEnd: night.AddDate(0, 0, 2),
		Status: domain.ReservationStatusPending, ExpiresAt: &expires,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO reservations").
		WithArgs(int64(7), int64(1), 2, 2, 1, night, night.AddDate(0, 0, 2), "PENDING", sqlmock.AnyArg(), now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	err := store.Create(context.Background(), res)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = \\$1").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(reservationCols).
				AddRow(42, 7, 1, 2, 2, 1, night, night.AddDate(0, 0, 2), "COMPLETED", nil, "txn-9", now, now))

		res, err := store.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCompleted, res.Status)
		assert.Nil(t, res.ExpiresAt)
		require.NotNil(t, res.TransactionID)
		assert.Equal(t, "txn-9", *res.TransactionID)
		assert.Equal(t, 2, res.Quantity)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = \\$1").
			WithArgs(int64(43)).
			WillReturnRows(sqlmock.NewRows(reservationCols))

		_, err := store.GetByID(ctx, 43)
		assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)
	res := &domain.Reservation{ID: 42, Status: domain.ReservationStatusCancelled, UpdatedAt: now}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations SET status").
			WithArgs("CANCELLED", sqlmock.AnyArg(), now, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, store.UpdateStatus(ctx, res))
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, store.UpdateStatus(ctx, res), domain.ErrReservationNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListExpiredPending(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id FROM reservations").
		WithArgs("PENDING", now, 500).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(1))

	ids, err := store.ListExpiredPending(context.Background(), now, 500)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListByUser(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM reservations\\s+WHERE user_id = \\$1").
		WithArgs(int64(7), 10, 20).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(5, 7, 1, 1, 1, 0, night.AddDate(0, 0, 5), night.AddDate(0, 0, 6), "PENDING", now, nil, now, now).
			AddRow(4, 7, 1, 1, 1, 0, night, night.AddDate(0, 0, 1), "CANCELLED", now, nil, now, now))

	list, err := store.ListByUser(context.Background(), 7, 10, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(5), list[0].ID)
	require.NotNil(t, list[0].ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_HotelIDForRoom(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT hotel_id FROM rooms WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(100))
	hotelID, err := store.HotelIDForRoom(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, hotelID)
	assert.Equal(t, int64(100), *hotelID)

	mock.ExpectQuery("SELECT hotel_id FROM rooms WHERE id = \\$1").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}))
	hotelID, err = store.HotelIDForRoom(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, hotelID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertRoom(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO rooms \\(id, hotel_id, name\\)").
		WithArgs(int64(3), int64(30), "Deluxe King").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.UpsertRoom(ctx, 3, 30, "Deluxe King"))

	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(int64(4), int64(30), "").
		WillReturnError(errors.New("connection reset"))
	err := store.UpsertRoom(ctx, 4, 30, "")
	assert.ErrorContains(t, err, "upsert room 4")
	assert.NoError(t, mock.ExpectationsWereMet())
}
