package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/service"
)

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Success records transaction id", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.hold.Hold(ctx, holdReq(1, 2, "2024-06-01", "2024-06-03"))
		require.NoError(t, err)

		require.NoError(t, f.life.Confirm(ctx, res.ReservationID, service.WithTransactionID("pay-123")))

		got, err := f.store.GetByID(ctx, res.ReservationID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCompleted, got.Status)
		require.NotNil(t, got.TransactionID)
		assert.Equal(t, "pay-123", *got.TransactionID)
		// Confirmation keeps the units consumed.
		assert.Equal(t, 3, f.available(1, "2024-06-01"))
	})

	t.Run("Second confirm is already processed", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.hold.Hold(ctx, holdReq(1, 1, "2024-06-01", "2024-06-02"))
		require.NoError(t, err)
		require.NoError(t, f.life.Confirm(ctx, res.ReservationID))

		err = f.life.Confirm(ctx, res.ReservationID)
		var processed *domain.AlreadyProcessedError
		require.ErrorAs(t, err, &processed)
		assert.Equal(t, domain.ReservationStatusCompleted, processed.Status)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("Not found", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.life.Confirm(ctx, 404), domain.ErrReservationNotFound)
	})

	t.Run("Expired hold is released then rejected", func(t *testing.T) {
		f := newFixture(t)
		req := holdReq(1, 3, "2024-06-01", "2024-06-03")
		req.HoldSeconds = 1
		res, err := f.hold.Hold(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 2, f.available(1, "2024-06-01"))

		f.clock.Advance(2 * time.Second)

		err = f.life.Confirm(ctx, res.ReservationID)
		assert.ErrorIs(t, err, domain.ErrHoldExpired)
		assert.Equal(t, 5, f.available(1, "2024-06-01"))
		assert.Equal(t, 5, f.available(1, "2024-06-02"))

		got, err := f.store.GetByID(ctx, res.ReservationID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCancelled, got.Status)

		err = f.life.Confirm(ctx, res.ReservationID)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
		assert.Equal(t, 5, f.available(1, "2024-06-01"))
	})

	t.Run("Confirm exactly at expiry succeeds", func(t *testing.T) {
		f := newFixture(t)
		req := holdReq(1, 1, "2024-06-01", "2024-06-02")
		req.HoldSeconds = 10
		res, err := f.hold.Hold(ctx, req)
		require.NoError(t, err)

		f.clock.Advance(10 * time.Second)
		assert.NoError(t, f.life.Confirm(ctx, res.ReservationID))
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Twice is idempotent", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.hold.Hold(ctx, holdReq(1, 2, "2024-06-01", "2024-06-04"))
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			require.NoError(t, f.life.Cancel(ctx, res.ReservationID))
			got, err := f.store.GetByID(ctx, res.ReservationID)
			require.NoError(t, err)
			assert.Equal(t, domain.ReservationStatusCancelled, got.Status)
			assert.Equal(t, 5, f.available(1, "2024-06-01"))
			assert.Equal(t, 5, f.available(1, "2024-06-03"))
		}
	})

	t.Run("Completed booking is cancelled without touching the ledger", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.hold.Hold(ctx, holdReq(1, 2, "2024-06-01", "2024-06-02"))
		require.NoError(t, err)
		require.NoError(t, f.life.Confirm(ctx, res.ReservationID))

		require.NoError(t, f.life.Cancel(ctx, res.ReservationID))
		got, err := f.store.GetByID(ctx, res.ReservationID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCancelled, got.Status)
		assert.Equal(t, 3, f.available(1, "2024-06-01"))
	})

	t.Run("Not found", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.life.Cancel(ctx, 404), domain.ErrReservationNotFound)
	})
}

func TestHoldCancel_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	start := day("2024-08-01")

	for qty := 1; qty <= 5; qty++ {
		for span := 1; span <= 6; span++ {
			t.Run(fmt.Sprintf("qty=%d nights=%d", qty, span), func(t *testing.T) {
				in := start.AddDate(0, 0, qty*10)
				out := in.AddDate(0, 0, span)
				before := make(map[string]int)
				for d := in; d.Before(out); d = d.AddDate(0, 0, 1) {
					before[domain.FormatDate(d)] = f.available(1, domain.FormatDate(d))
				}

				res, err := f.hold.Hold(ctx, domain.HoldRequest{UserID: 1, RoomID: 1, Quantity: qty, CheckIn: in, CheckOut: out})
				require.NoError(t, err)
				require.NoError(t, f.life.Cancel(ctx, res.ReservationID))

				for date, want := range before {
					assert.Equal(t, want, f.available(1, date), date)
				}
			})
		}
	}
}

func TestReleaseExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := holdReq(1, 2, "2024-06-01", "2024-06-02")
	req.HoldSeconds = 30
	res, err := f.hold.Hold(ctx, req)
	require.NoError(t, err)

	released, err := f.life.ReleaseExpired(ctx, res.ReservationID)
	require.NoError(t, err)
	assert.False(t, released, "hold has not expired yet")
	assert.Equal(t, 3, f.available(1, "2024-06-01"))

	f.clock.Advance(31 * time.Second)
	released, err = f.life.ReleaseExpired(ctx, res.ReservationID)
	require.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, 5, f.available(1, "2024-06-01"))

	released, err = f.life.ReleaseExpired(ctx, res.ReservationID)
	require.NoError(t, err)
	assert.False(t, released)
	assert.Equal(t, 5, f.available(1, "2024-06-01"))

	_, err = f.life.ReleaseExpired(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestExpiredHold_ConfirmCancelAndReaperRace(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		f := newFixture(t)
		req := holdReq(1, 3, "2024-06-01", "2024-06-03")
		req.HoldSeconds = 30
		res, err := f.hold.Hold(ctx, req)
		require.NoError(t, err)
		f.clock.Advance(31 * time.Second)

		var (
			wg         sync.WaitGroup
			reaped     atomic.Int32
			confirmErr error
			cancelErr  error
			releaseErr error
		)
		start := make(chan struct{})
		wg.Add(3)
		go func() {
			defer wg.Done()
			<-start
			confirmErr = f.life.Confirm(ctx, res.ReservationID)
		}()
		go func() {
			defer wg.Done()
			<-start
			cancelErr = f.life.Cancel(ctx, res.ReservationID)
		}()
		go func() {
			defer wg.Done()
			<-start
			released, err := f.life.ReleaseExpired(ctx, res.ReservationID)
			releaseErr = err
			if released {
				reaped.Add(1)
			}
		}()
		close(start)
		wg.Wait()

		require.Error(t, confirmErr, "an expired hold must never confirm")
		assert.True(t, errors.Is(confirmErr, domain.ErrHoldExpired) || errors.Is(confirmErr, domain.ErrAlreadyProcessed), confirmErr)
		require.NoError(t, cancelErr)
		require.NoError(t, releaseErr)
		assert.LessOrEqual(t, reaped.Load(), int32(1))

		r, err := f.store.GetByID(ctx, res.ReservationID)
		require.NoError(t, err)
		require.Equal(t, domain.ReservationStatusCancelled, r.Status, "iteration %d", i)
		for _, night := range []string{"2024-06-01", "2024-06-02"} {
			e, ok := f.store.Entry(1, day(night))
			require.True(t, ok)
			require.Equal(t, e.TotalQuantity, e.AvailableQuantity, "iteration %d night %s", i, night)
		}
	}
}

func TestRandomSequences_KeepLedgerConsistent(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(20240601))
	base := day("2024-09-01")
	const horizon = 10

	for round := 0; round < 20; round++ {
		f := newFixture(t)
		var ids []int64

		for step := 0; step < 150; step++ {
			switch op := rng.Intn(10); {
			case op < 5:
				in := base.AddDate(0, 0, rng.Intn(horizon-1))
				out := in.AddDate(0, 0, 1+rng.Intn(3))
				req := domain.HoldRequest{
					UserID: 1, RoomID: 1, Quantity: 1 + rng.Intn(3),
					CheckIn: in, CheckOut: out, HoldSeconds: 1 + rng.Intn(60),
				}
				if res, err := f.hold.Hold(ctx, req); err == nil {
					ids = append(ids, res.ReservationID)
				} else {
					require.ErrorIs(t, err, domain.ErrInsufficientInventory)
				}
			case op < 7 && len(ids) > 0:
				require.NoError(t, f.life.Cancel(ctx, ids[rng.Intn(len(ids))]))
			case op < 9 && len(ids) > 0:
				_ = f.life.Confirm(ctx, ids[rng.Intn(len(ids))])
			default:
				f.clock.Advance(time.Duration(rng.Intn(20)) * time.Second)
				for _, id := range ids {
					_, err := f.life.ReleaseExpired(ctx, id)
					require.NoError(t, err)
				}
			}

			assertLedgerConsistent(t, f, ids, base, horizon+3)
		}
	}
}

// assertLedgerConsistent checks the counters are in range and that live
// reservations never claim more than a night's capacity.
func assertLedgerConsistent(t *testing.T, f *fixture, ids []int64, base time.Time, nights int) {
	t.Helper()
	ctx := context.Background()

	claimed := make(map[string]int)
	for _, id := range ids {
		r, err := f.store.GetByID(ctx, id)
		require.NoError(t, err)
		if r.Status == domain.ReservationStatusCancelled {
			continue
		}
		for _, night := range r.Stay().Nights() {
			claimed[domain.FormatDate(night)] += r.Quantity
		}
	}

	for i := 0; i < nights; i++ {
		d := base.AddDate(0, 0, i)
		e, ok := f.store.Entry(1, d)
		if !ok {
			require.Zero(t, claimed[domain.FormatDate(d)])
			continue
		}
		require.GreaterOrEqual(t, e.AvailableQuantity, 0)
		require.LessOrEqual(t, e.AvailableQuantity, e.TotalQuantity)
		require.LessOrEqual(t, claimed[domain.FormatDate(d)], e.TotalQuantity)
		require.Equal(t, e.TotalQuantity-claimed[domain.FormatDate(d)], e.AvailableQuantity, domain.FormatDate(d))
	}
}
