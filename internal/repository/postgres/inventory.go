package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

type inventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

type ledgerRow struct {
	RoomID            int64     `db:"room_id"`
	StayDate          time.Time `db:"stay_date"`
	TotalQuantity     int       `db:"total_quantity"`
	AvailableQuantity int       `db:"available_quantity"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r ledgerRow) toDomain() domain.LedgerEntry {
	return domain.LedgerEntry{
		RoomID:            r.RoomID,
		Date:              domain.NormalizeDate(r.StayDate),
		TotalQuantity:     r.TotalQuantity,
		AvailableQuantity: r.AvailableQuantity,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *inventoryRepository) GetOrCreateForUpdate(ctx context.Context, roomID int64, date time.Time, defaultCapacity int) (*domain.LedgerEntry, error) {
	if txFromContext(ctx) == nil {
		return nil, fmt.Errorf("lock inventory room %d: no transaction on context", roomID)
	}
	q := conn(ctx, r.db)
	day := domain.NormalizeDate(date)

	// Concurrent creators race on the primary key; the loser's insert is a no-op.
	insert := `INSERT INTO room_inventory (room_id, stay_date, total_quantity, available_quantity, updated_at)
	           VALUES ($1, $2, $3, $3, NOW())
	           ON CONFLICT (room_id, stay_date) DO NOTHING`
	logger.DatabaseCall("insert", "room_inventory", "room_id", roomID, "date", domain.FormatDate(day))
	if _, err := q.ExecContext(ctx, insert, roomID, day, defaultCapacity); err != nil {
		return nil, fmt.Errorf("create inventory row: %w", mapError(err))
	}

	query := `SELECT room_id, stay_date, total_quantity, available_quantity, updated_at
	          FROM room_inventory WHERE room_id = $1 AND stay_date = $2 FOR UPDATE`
	var row ledgerRow
	if err := sqlx.GetContext(ctx, q, &row, query, roomID, day); err != nil {
		return nil, fmt.Errorf("lock inventory row: %w", mapError(err))
	}
	entry := row.toDomain()
	return &entry, nil
}

func (r *inventoryRepository) Save(ctx context.Context, e *domain.LedgerEntry) error {
	query := `UPDATE room_inventory SET total_quantity = $1, available_quantity = $2, updated_at = NOW()
	          WHERE room_id = $3 AND stay_date = $4`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, e.TotalQuantity, e.AvailableQuantity, e.RoomID, domain.NormalizeDate(e.Date))
	if err != nil {
		return fmt.Errorf("save inventory row: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update", n, err, "table", "room_inventory")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("save inventory row room %d on %s: row missing", e.RoomID, domain.FormatDate(e.Date))
	}
	return nil
}

func (r *inventoryRepository) ListRange(ctx context.Context, roomID int64, from, to time.Time) ([]domain.LedgerEntry, error) {
	query := `SELECT room_id, stay_date, total_quantity, available_quantity, updated_at
	          FROM room_inventory WHERE room_id = $1 AND stay_date >= $2 AND stay_date < $3
	          ORDER BY stay_date`
	var rows []ledgerRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, roomID, domain.NormalizeDate(from), domain.NormalizeDate(to)); err != nil {
		return nil, fmt.Errorf("list inventory: %w", mapError(err))
	}
	entries := make([]domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}
