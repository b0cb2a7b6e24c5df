package service

import (
	"context"
	"fmt"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

type holdService struct {
	store repository.Store
	opts  Options
}

func NewHoldService(store repository.Store, opts ...Option) HoldService {
	return &holdService{store: store, opts: newOptions(opts)}
}

// Hold places a provisional reservation on every night of the stay.
// Nights are locked in ascending date order, all of them are checked before
// any is decremented, and the reservation row is written in the same
// transaction as the ledger changes.
func (s *holdService) Hold(ctx context.Context, req domain.HoldRequest) (*domain.HoldResult, error) {
	logger.EnterMethod("holdService.Hold", "userID", req.UserID, "roomID", req.RoomID, "qty", req.Quantity)

	stay, err := s.validate(req)
	if err != nil {
		logger.ExitMethodWithError("holdService.Hold", err, "roomID", req.RoomID)
		return nil, err
	}
	nights := stay.Nights()
	ttl := s.opts.holdDuration(req.HoldSeconds)

	var result *domain.HoldResult
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		entries := make([]*domain.LedgerEntry, 0, len(nights))
		for _, night := range nights {
			entry, err := s.store.GetOrCreateForUpdate(ctx, req.RoomID, night, s.opts.DefaultCapacity)
			if err != nil {
				return err
			}
			if !entry.CanReserve(req.Quantity) {
				return &domain.InsufficientInventoryError{
					RoomID:    req.RoomID,
					Date:      night,
					Requested: req.Quantity,
					Available: entry.AvailableQuantity,
				}
			}
			entries = append(entries, entry)
		}

		for _, entry := range entries {
			if err := entry.Decrement(req.Quantity); err != nil {
				return err
			}
			if err := s.store.Save(ctx, entry); err != nil {
				return err
			}
		}

		now := s.opts.Clock.Now()
		expiresAt := now.Add(ttl)
		res := &domain.Reservation{
			UserID:    req.UserID,
			RoomID:    req.RoomID,
			Quantity:  req.Quantity,
			Adults:    req.Adults,
			Children:  req.Children,
			StayStart: stay.CheckIn,
			StayEnd:   stay.CheckOut,
			Status:    domain.ReservationStatusPending,
			ExpiresAt: &expiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Create(ctx, res); err != nil {
			return err
		}
		result = &domain.HoldResult{
			ReservationID: res.ID,
			ExpiresAt:     expiresAt,
			Status:        res.Status,
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("holdService.Hold", err, "roomID", req.RoomID, "nights", len(nights))
		return nil, err
	}

	logger.InfoContext(ctx, "Hold placed",
		"reservation_id", result.ReservationID,
		"room_id", req.RoomID,
		"nights", len(nights),
		"qty", req.Quantity,
		"expires_at", result.ExpiresAt)
	logger.ExitMethod("holdService.Hold", "reservationID", result.ReservationID)
	return result, nil
}

func (s *holdService) validate(req domain.HoldRequest) (domain.StayRange, error) {
	if req.Quantity < 1 {
		return domain.StayRange{}, domain.ErrInvalidQuantity
	}
	if req.Adults < 0 || req.Children < 0 {
		return domain.StayRange{}, domain.ErrInvalidGuests
	}
	stay, err := domain.NewStayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return domain.StayRange{}, err
	}
	if n := stay.Len(); s.opts.MaxNights > 0 && n > s.opts.MaxNights {
		return domain.StayRange{}, fmt.Errorf("%w: stay of %d nights exceeds %d", domain.ErrInvalidRange, n, s.opts.MaxNights)
	}
	return stay, nil
}
