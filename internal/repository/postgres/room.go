package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"hotel-booking-backend/internal/repository"
)

var _ repository.RoomCatalogWriter = (*Store)(nil)

type roomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) HotelIDForRoom(ctx context.Context, roomID int64) (*int64, error) {
	var hotelID int64
	err := sqlx.GetContext(ctx, conn(ctx, r.db), &hotelID, `SELECT hotel_id FROM rooms WHERE id = $1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup hotel for room %d: %w", roomID, err)
	}
	return &hotelID, nil
}

// UpsertRoom implements repository.RoomCatalogWriter.
func (s *Store) UpsertRoom(ctx context.Context, roomID, hotelID int64, name string) error {
	query := `INSERT INTO rooms (id, hotel_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET hotel_id = EXCLUDED.hotel_id, name = EXCLUDED.name`
	if _, err := conn(ctx, s.db).ExecContext(ctx, query, roomID, hotelID, name); err != nil {
		return fmt.Errorf("upsert room %d: %w", roomID, err)
	}
	return nil
}
