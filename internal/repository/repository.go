package repository

import (
	"context"
	"time"

	"hotel-booking-backend/internal/domain"
)

// Transactor runs fn inside a single transaction carried on the context.
// A nested call joins the outer transaction. Row locks taken inside fn are
// held until fn returns; a non-nil error rolls everything back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type InventoryRepository interface {
	// GetOrCreateForUpdate returns the ledger entry for (roomID, date) with an
	// exclusive lock held for the rest of the transaction, creating it with
	// defaultCapacity units when absent.
	GetOrCreateForUpdate(ctx context.Context, roomID int64, date time.Time, defaultCapacity int) (*domain.LedgerEntry, error)
	// Save persists a locked entry's counters.
	Save(ctx context.Context, entry *domain.LedgerEntry) error
	// ListRange returns existing entries for nights in [from, to), ascending.
	ListRange(ctx context.Context, roomID int64, from, to time.Time) ([]domain.LedgerEntry, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	// GetByIDForUpdate locks the reservation row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	// UpdateStatus writes status, transaction id and updated_at.
	UpdateStatus(ctx context.Context, r *domain.Reservation) error
	// ListExpiredPending returns ids of PENDING holds whose expiry is before cutoff.
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error)
}

// RoomRepository is the read-only catalog lookup used to enrich projections.
type RoomRepository interface {
	// HotelIDForRoom returns nil when the room is unknown.
	HotelIDForRoom(ctx context.Context, roomID int64) (*int64, error)
}

// RoomCatalogWriter registers catalog rooms. Only seeding writes the catalog.
type RoomCatalogWriter interface {
	UpsertRoom(ctx context.Context, roomID, hotelID int64, name string) error
}

// Store is everything the services need from one persistence backend.
type Store interface {
	Transactor
	InventoryRepository
	ReservationRepository
	RoomRepository
}
