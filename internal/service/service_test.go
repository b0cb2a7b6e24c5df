package service_test

import (
	"testing"
	"time"

	"hotel-booking-backend/internal/clock"
	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/repository/memory"
	"hotel-booking-backend/internal/service"
)

var epoch = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	clock *clock.Manual
	hold  service.HoldService
	life  service.LifecycleService
	query service.QueryService
	inv   service.InventoryService
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	c := clock.NewManual(epoch)
	store := memory.NewStore(memory.WithClock(c), memory.WithRoom(1, 10), memory.WithRoom(2, 20))
	opts = append([]service.Option{service.WithClock(c), service.WithDefaultCapacity(5)}, opts...)
	return &fixture{
		store: store,
		clock: c,
		hold:  service.NewHoldService(store, opts...),
		life:  service.NewLifecycleService(store, opts...),
		query: service.NewQueryService(store, store, opts...),
		inv:   service.NewInventoryService(store, opts...),
	}
}

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// available reads committed availability, treating unseen nights as default capacity.
func (f *fixture) available(roomID int64, date string) int {
	e, ok := f.store.Entry(roomID, day(date))
	if !ok {
		return 5
	}
	return e.AvailableQuantity
}

func holdReq(roomID int64, qty int, in, out string) domain.HoldRequest {
	return domain.HoldRequest{
		UserID:   7,
		RoomID:   roomID,
		Quantity: qty,
		CheckIn:  day(in),
		CheckOut: day(out),
		Adults:   2,
	}
}
