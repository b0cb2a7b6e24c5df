package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hotel-booking-backend/internal/domain"
)

func (s *Store) Create(ctx context.Context, r *domain.Reservation) error {
	return s.inTx(ctx, func(t *tx) error {
		id := s.nextID.Add(1)
		if err := t.lock(ctx, reservationLockName(id)); err != nil {
			return err
		}
		r.ID = id
		t.reservations[id] = cloneReservation(*r)
		return nil
	})
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	if t := txFromContext(ctx); t != nil {
		if r, ok := t.reservations[id]; ok {
			c := cloneReservation(r)
			return &c, nil
		}
	}
	s.mu.RLock()
	r, ok := s.reservations[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	c := cloneReservation(r)
	return &c, nil
}

func (s *Store) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	t := txFromContext(ctx)
	if t == nil {
		return nil, fmt.Errorf("lock reservation %d: no transaction on context", id)
	}
	if err := t.lock(ctx, reservationLockName(id)); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *Store) UpdateStatus(ctx context.Context, r *domain.Reservation) error {
	return s.inTx(ctx, func(t *tx) error {
		if err := t.lock(ctx, reservationLockName(r.ID)); err != nil {
			return err
		}
		current, err := s.GetByID(context.WithValue(ctx, txKey{}, t), r.ID)
		if err != nil {
			return err
		}
		current.Status = r.Status
		current.TransactionID = r.TransactionID
		current.UpdatedAt = r.UpdatedAt
		t.reservations[r.ID] = cloneReservation(*current)
		return nil
	})
}

func (s *Store) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	s.mu.RLock()
	var expired []domain.Reservation
	for _, r := range s.reservations {
		if r.Status == domain.ReservationStatusPending && r.ExpiresAt != nil && r.ExpiresAt.Before(cutoff) {
			expired = append(expired, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(expired, func(i, j int) bool {
		a, b := expired[i], expired[j]
		if !a.ExpiresAt.Equal(*b.ExpiresAt) {
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	ids := make([]int64, len(expired))
	for i, r := range expired {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *Store) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	s.mu.RLock()
	var owned []domain.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID {
			owned = append(owned, cloneReservation(r))
		}
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		a, b := owned[i], owned[j]
		if !a.StayStart.Equal(b.StayStart) {
			return a.StayStart.After(b.StayStart)
		}
		return a.ID > b.ID
	})
	if offset >= len(owned) {
		return []domain.Reservation{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *Store) HotelIDForRoom(ctx context.Context, roomID int64) (*int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hotelID, ok := s.hotels[roomID]
	if !ok {
		return nil, nil
	}
	return &hotelID, nil
}

func cloneReservation(r domain.Reservation) domain.Reservation {
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		r.ExpiresAt = &t
	}
	if r.TransactionID != nil {
		s := *r.TransactionID
		r.TransactionID = &s
	}
	return r
}
