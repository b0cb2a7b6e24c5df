package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hotel-booking-backend/internal/domain"
)

func (s *Store) GetOrCreateForUpdate(ctx context.Context, roomID int64, date time.Time, defaultCapacity int) (*domain.LedgerEntry, error) {
	t := txFromContext(ctx)
	if t == nil {
		return nil, fmt.Errorf("lock inventory room %d: no transaction on context", roomID)
	}
	key := keyFor(roomID, date)
	if err := t.lock(ctx, key.lockName()); err != nil {
		return nil, err
	}

	if e, ok := t.inventory[key]; ok {
		return &e, nil
	}
	s.mu.RLock()
	e, ok := s.inventory[key]
	s.mu.RUnlock()
	if !ok {
		e = *domain.NewLedgerEntry(roomID, date, defaultCapacity)
		e.UpdatedAt = s.clock.Now()
		t.inventory[key] = e
	}
	return &e, nil
}

func (s *Store) Save(ctx context.Context, e *domain.LedgerEntry) error {
	key := keyFor(e.RoomID, e.Date)
	return s.inTx(ctx, func(t *tx) error {
		if !t.holds(key.lockName()) {
			return fmt.Errorf("save inventory room %d on %s: row not locked", e.RoomID, key.date)
		}
		entry := *e
		entry.Date = domain.NormalizeDate(e.Date)
		entry.UpdatedAt = s.clock.Now()
		t.inventory[key] = entry
		return nil
	})
}

func (s *Store) ListRange(ctx context.Context, roomID int64, from, to time.Time) ([]domain.LedgerEntry, error) {
	start, end := domain.NormalizeDate(from), domain.NormalizeDate(to)

	visible := make(map[inventoryKey]domain.LedgerEntry)
	s.mu.RLock()
	for k, e := range s.inventory {
		if k.roomID == roomID {
			visible[k] = e
		}
	}
	s.mu.RUnlock()
	if t := txFromContext(ctx); t != nil {
		for k, e := range t.inventory {
			if k.roomID == roomID {
				visible[k] = e
			}
		}
	}

	var entries []domain.LedgerEntry
	for _, e := range visible {
		if !e.Date.Before(start) && e.Date.Before(end) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// Entry returns the committed ledger row, for assertions and diagnostics.
func (s *Store) Entry(roomID int64, date time.Time) (domain.LedgerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.inventory[keyFor(roomID, date)]
	return e, ok
}
