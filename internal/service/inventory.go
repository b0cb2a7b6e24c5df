package service

import (
	"context"
	"fmt"
	"time"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

type inventoryService struct {
	store repository.Store
	opts  Options
}

func NewInventoryService(store repository.Store, opts ...Option) InventoryService {
	return &inventoryService{store: store, opts: newOptions(opts)}
}

// Availability reports every night in [from, to). Nights with no ledger row
// yet show the default capacity a first hold would create them with.
func (s *inventoryService) Availability(ctx context.Context, roomID int64, from, to time.Time) ([]domain.NightAvailability, error) {
	stay, err := s.calendarRange(from, to)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListRange(ctx, roomID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]domain.LedgerEntry, len(entries))
	for _, e := range entries {
		byDate[domain.FormatDate(e.Date)] = e
	}

	nights := stay.Nights()
	out := make([]domain.NightAvailability, 0, len(nights))
	for _, night := range nights {
		key := domain.FormatDate(night)
		row := domain.NightAvailability{Date: key, Total: s.opts.DefaultCapacity, Available: s.opts.DefaultCapacity}
		if e, ok := byDate[key]; ok {
			row.Total = e.TotalQuantity
			row.Available = e.AvailableQuantity
		}
		out = append(out, row)
	}
	return out, nil
}

// Provision sets the capacity of each night, keeping units already held or
// booked. Nights are locked in ascending order like a hold.
func (s *inventoryService) Provision(ctx context.Context, req domain.ProvisionRequest) ([]domain.NightAvailability, error) {
	logger.EnterMethod("inventoryService.Provision", "roomID", req.RoomID, "total", req.Total)

	if req.Total < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	stay, err := s.calendarRange(req.From, req.To)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.Provision", err, "roomID", req.RoomID)
		return nil, err
	}

	out := make([]domain.NightAvailability, 0, stay.Len())
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		out = out[:0]
		for _, night := range stay.Nights() {
			entry, err := s.store.GetOrCreateForUpdate(ctx, req.RoomID, night, req.Total)
			if err != nil {
				return err
			}
			if err := entry.Reprovision(req.Total); err != nil {
				return err
			}
			if err := s.store.Save(ctx, entry); err != nil {
				return err
			}
			out = append(out, domain.NightAvailability{
				Date:      domain.FormatDate(night),
				Total:     entry.TotalQuantity,
				Available: entry.AvailableQuantity,
			})
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("inventoryService.Provision", err, "roomID", req.RoomID)
		return nil, err
	}

	logger.Info("Inventory provisioned", "room_id", req.RoomID, "nights", len(out), "total", req.Total)
	logger.ExitMethod("inventoryService.Provision", "roomID", req.RoomID)
	return out, nil
}

func (s *inventoryService) calendarRange(from, to time.Time) (domain.StayRange, error) {
	stay, err := domain.NewStayRange(from, to)
	if err != nil {
		return domain.StayRange{}, err
	}
	if n := stay.Len(); n > maxCalendarNights {
		return domain.StayRange{}, fmt.Errorf("%w: range of %d nights exceeds %d", domain.ErrInvalidRange, n, maxCalendarNights)
	}
	return stay, nil
}
