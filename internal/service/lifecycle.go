package service

import (
	"context"
	"errors"
	"time"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

type confirmConfig struct {
	transactionID string
}

type ConfirmOption func(*confirmConfig)

// WithTransactionID records the payment reference on the confirmed booking.
func WithTransactionID(id string) ConfirmOption {
	return func(c *confirmConfig) {
		c.transactionID = id
	}
}

type lifecycleService struct {
	store repository.Store
	opts  Options
}

func NewLifecycleService(store repository.Store, opts ...Option) LifecycleService {
	return &lifecycleService{store: store, opts: newOptions(opts)}
}

func (s *lifecycleService) Confirm(ctx context.Context, reservationID int64, opts ...ConfirmOption) error {
	logger.EnterMethod("lifecycleService.Confirm", "reservationID", reservationID)

	var cfg confirmConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	expired := false
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.store.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationStatusPending {
			return &domain.AlreadyProcessedError{ReservationID: res.ID, Status: res.Status}
		}

		now := s.opts.Clock.Now()
		if res.IsExpired(now) {
			// The release commits even though the caller gets an error.
			expired = true
			return s.release(ctx, res, now)
		}

		res.Status = domain.ReservationStatusCompleted
		res.UpdatedAt = now
		if cfg.transactionID != "" {
			txID := cfg.transactionID
			res.TransactionID = &txID
		}
		return s.store.UpdateStatus(ctx, res)
	})
	if err != nil {
		logger.ExitMethodWithError("lifecycleService.Confirm", err, "reservationID", reservationID)
		return err
	}
	if expired {
		logger.WithReservation(reservationID).Info("Confirm rejected, hold expired and released")
		return domain.ErrHoldExpired
	}

	logger.WithReservation(reservationID).Info("Reservation confirmed")
	logger.ExitMethod("lifecycleService.Confirm", "reservationID", reservationID)
	return nil
}

func (s *lifecycleService) Cancel(ctx context.Context, reservationID int64) error {
	logger.EnterMethod("lifecycleService.Cancel", "reservationID", reservationID)

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.store.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		return s.release(ctx, res, s.opts.Clock.Now())
	})
	if err != nil {
		logger.ExitMethodWithError("lifecycleService.Cancel", err, "reservationID", reservationID)
		return err
	}

	logger.ExitMethod("lifecycleService.Cancel", "reservationID", reservationID)
	return nil
}

func (s *lifecycleService) ReleaseExpired(ctx context.Context, reservationID int64) (bool, error) {
	released := false
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.store.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		now := s.opts.Clock.Now()
		// Lost the race to confirm or cancel, or the hold was extended.
		if res.Status != domain.ReservationStatusPending || !res.IsExpired(now) {
			return nil
		}
		released = true
		return s.release(ctx, res, now)
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

// release moves a reservation to CANCELLED. Only a PENDING hold still owns
// ledger units, so only a PENDING hold gives them back. Must run inside the
// transaction that locked res.
func (s *lifecycleService) release(ctx context.Context, res *domain.Reservation, now time.Time) error {
	if res.Status == domain.ReservationStatusCancelled {
		return nil
	}

	if res.Status == domain.ReservationStatusPending {
		nights := res.Stay().Nights()
		for _, night := range nights {
			entry, err := s.store.GetOrCreateForUpdate(ctx, res.RoomID, night, s.opts.DefaultCapacity)
			if err != nil {
				return err
			}
			if err := entry.Increment(res.Quantity); err != nil {
				if errors.Is(err, domain.ErrLedgerInconsistent) {
					logger.ErrorContext(ctx, "Ledger inconsistent during release",
						"reservation_id", res.ID, "room_id", res.RoomID, "error", err)
				}
				return err
			}
			if err := s.store.Save(ctx, entry); err != nil {
				return err
			}
		}
		logger.InfoContext(ctx, "Hold released",
			"reservation_id", res.ID,
			"room_id", res.RoomID,
			"nights", len(nights),
			"qty", res.Quantity)
	}

	res.Status = domain.ReservationStatusCancelled
	res.UpdatedAt = now
	return s.store.UpdateStatus(ctx, res)
}
