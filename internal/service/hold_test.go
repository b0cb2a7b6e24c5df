package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/service"
)

func TestHold_SellOutAndRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.hold.Hold(ctx, holdReq(1, 5, "2024-06-01", "2024-06-03"))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, first.Status)
	assert.Equal(t, 0, f.available(1, "2024-06-01"))
	assert.Equal(t, 0, f.available(1, "2024-06-02"))
	assert.Equal(t, 5, f.available(1, "2024-06-03"))

	_, err = f.hold.Hold(ctx, holdReq(1, 1, "2024-06-01", "2024-06-03"))
	var insufficient *domain.InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.Equal(t, "2024-06-01", domain.FormatDate(insufficient.Date))
	assert.Equal(t, 0, insufficient.Available)

	require.NoError(t, f.life.Cancel(ctx, first.ReservationID))
	assert.Equal(t, 5, f.available(1, "2024-06-01"))
	assert.Equal(t, 5, f.available(1, "2024-06-02"))

	second, err := f.hold.Hold(ctx, holdReq(1, 1, "2024-06-01", "2024-06-03"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ReservationID, second.ReservationID)
}

func TestHold_NamesFirstShortNight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.hold.Hold(ctx, holdReq(1, 4, "2024-06-03", "2024-06-04"))
	require.NoError(t, err)

	_, err = f.hold.Hold(ctx, holdReq(1, 2, "2024-06-01", "2024-06-05"))
	var insufficient *domain.InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "2024-06-03", domain.FormatDate(insufficient.Date))
	assert.Equal(t, 2, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)

	// Nothing was decremented on the nights before the short one.
	assert.Equal(t, 5, f.available(1, "2024-06-01"))
	assert.Equal(t, 5, f.available(1, "2024-06-02"))
	assert.Equal(t, 1, f.available(1, "2024-06-03"))
}

func TestHold_ZeroDefaultCapacity(t *testing.T) {
	f := newFixture(t, service.WithDefaultCapacity(0))
	ctx := context.Background()

	_, err := f.hold.Hold(ctx, holdReq(1, 1, "2024-06-01", "2024-06-02"))
	var insufficient *domain.InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Available)

	_, err = f.inv.Provision(ctx, domain.ProvisionRequest{RoomID: 1, From: day("2024-06-01"), To: day("2024-06-02"), Total: 2})
	require.NoError(t, err)
	_, err = f.hold.Hold(ctx, holdReq(1, 1, "2024-06-01", "2024-06-02"))
	require.NoError(t, err)
}

func TestHold_Validation(t *testing.T) {
	f := newFixture(t, service.WithMaxNights(7))
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.HoldRequest
		want error
	}{
		{"zero quantity", holdReq(1, 0, "2024-06-01", "2024-06-02"), domain.ErrInvalidQuantity},
		{"same day", holdReq(1, 1, "2024-06-01", "2024-06-01"), domain.ErrInvalidRange},
		{"reversed", holdReq(1, 1, "2024-06-05", "2024-06-01"), domain.ErrInvalidRange},
		{"too long", holdReq(1, 1, "2024-06-01", "2024-06-20"), domain.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.hold.Hold(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("negative guests", func(t *testing.T) {
		req := holdReq(1, 1, "2024-06-01", "2024-06-02")
		req.Children = -1
		_, err := f.hold.Hold(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidGuests)
	})

	_, ok := f.store.Entry(1, day("2024-06-01"))
	assert.False(t, ok, "rejected holds must not touch the ledger")
}

func TestHold_HoldSeconds(t *testing.T) {
	f := newFixture(t, service.WithHoldSeconds(30, 600))
	ctx := context.Background()

	tests := []struct {
		name      string
		requested int
		want      time.Duration
	}{
		{"default", 0, 30 * time.Second},
		{"negative uses default", -5, 30 * time.Second},
		{"explicit", 120, 120 * time.Second},
		{"clamped", 100000, 600 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := holdReq(2, 1, "2024-07-01", "2024-07-02")
			req.HoldSeconds = tt.requested
			res, err := f.hold.Hold(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, epoch.Add(tt.want), res.ExpiresAt)
		})
	}
}

func TestHold_ConcurrentHoldsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for room := int64(100); room < 130; room++ {
		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = f.hold.Hold(ctx, holdReq(room, 3, "2024-06-01", "2024-06-04"))
			}(i)
		}
		close(start)
		wg.Wait()

		succeeded, rejected := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientInventory):
				rejected++
			default:
				t.Fatalf("room %d: unexpected error %v", room, err)
			}
		}
		assert.Equal(t, 1, succeeded, "room %d", room)
		assert.Equal(t, 1, rejected, "room %d", room)
		assert.Equal(t, 2, f.available(room, "2024-06-02"))
	}
}

func TestHold_OverlappingRangesDoNotDeadlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ranges := [][2]string{
		{"2024-06-01", "2024-06-05"},
		{"2024-06-03", "2024-06-08"},
		{"2024-06-02", "2024-06-04"},
		{"2024-06-04", "2024-06-06"},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r := ranges[i%len(ranges)]
				res, err := f.hold.Hold(ctx, holdReq(1, 1, r[0], r[1]))
				if err == nil && i%2 == 0 {
					_ = f.life.Cancel(ctx, res.ReservationID)
				}
			}(i)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("holds and cancels on overlapping ranges did not finish")
	}

	for d := day("2024-06-01"); d.Before(day("2024-06-08")); d = d.AddDate(0, 0, 1) {
		e, ok := f.store.Entry(1, d)
		require.True(t, ok)
		assert.GreaterOrEqual(t, e.AvailableQuantity, 0)
		assert.LessOrEqual(t, e.AvailableQuantity, e.TotalQuantity)
	}
}
