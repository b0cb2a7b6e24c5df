package service

import (
	"context"
	"time"

	"hotel-booking-backend/internal/domain"
)

type HoldService interface {
	Hold(ctx context.Context, req domain.HoldRequest) (*domain.HoldResult, error)
}

type LifecycleService interface {
	Confirm(ctx context.Context, reservationID int64, opts ...ConfirmOption) error
	Cancel(ctx context.Context, reservationID int64) error
	// ReleaseExpired cancels the reservation only if it is still a PENDING
	// hold past its expiry. It reports whether anything was released.
	ReleaseExpired(ctx context.Context, reservationID int64) (bool, error)
}

type QueryService interface {
	Get(ctx context.Context, reservationID int64) (*domain.ReservationDetail, error)
	ListByUser(ctx context.Context, userID int64, page, size int) ([]domain.ReservationSummary, error)
}

type InventoryService interface {
	Availability(ctx context.Context, roomID int64, from, to time.Time) ([]domain.NightAvailability, error)
	Provision(ctx context.Context, req domain.ProvisionRequest) ([]domain.NightAvailability, error)
}
