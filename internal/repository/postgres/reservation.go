package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

type reservationRepository struct {
	db *sqlx.DB
}

func NewReservationRepository(db *sqlx.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, user_id, room_id, num_rooms, num_adult, num_kid, start_date, end_date,
	status, expires_at, transaction_id, created_at, updated_at`

type reservationRow struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	RoomID        int64          `db:"room_id"`
	NumRooms      int            `db:"num_rooms"`
	NumAdult      int            `db:"num_adult"`
	NumKid        int            `db:"num_kid"`
	StartDate     time.Time      `db:"start_date"`
	EndDate       time.Time      `db:"end_date"`
	Status        string         `db:"status"`
	ExpiresAt     sql.NullTime   `db:"expires_at"`
	TransactionID sql.NullString `db:"transaction_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r reservationRow) toDomain() domain.Reservation {
	res := domain.Reservation{
		ID:        r.ID,
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		Quantity:  r.NumRooms,
		Adults:    r.NumAdult,
		Children:  r.NumKid,
		StayStart: r.StartDate.UTC(),
		StayEnd:   r.EndDate.UTC(),
		Status:    domain.ReservationStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ExpiresAt.Valid {
		t := r.ExpiresAt.Time.UTC()
		res.ExpiresAt = &t
	}
	if r.TransactionID.Valid {
		s := r.TransactionID.String
		res.TransactionID = &s
	}
	return res
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `INSERT INTO reservations (user_id, room_id, num_rooms, num_adult, num_kid, start_date, end_date, status, expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	logger.DatabaseCall("insert", "reservations", "user_id", res.UserID, "room_id", res.RoomID)
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		res.UserID, res.RoomID, res.Quantity, res.Adults, res.Children,
		res.StayStart, res.StayEnd, res.Status, nullTime(res.ExpiresAt), res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("create reservation: %w", mapError(err))
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *reservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	if txFromContext(ctx) == nil {
		return nil, fmt.Errorf("lock reservation %d: no transaction on context", id)
	}
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *reservationRepository) get(ctx context.Context, query string, id int64) (*domain.Reservation, error) {
	var row reservationRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation %d: %w", id, mapError(err))
	}
	res := row.toDomain()
	return &res, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, res *domain.Reservation) error {
	query := `UPDATE reservations SET status = $1, transaction_id = $2, updated_at = $3 WHERE id = $4`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, res.Status, nullString(res.TransactionID), res.UpdatedAt, res.ID)
	if err != nil {
		return fmt.Errorf("update reservation %d: %w", res.ID, mapError(err))
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("update", n, err, "table", "reservations", "reservation_id", res.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *reservationRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	query := `SELECT id FROM reservations
	          WHERE status = $1 AND expires_at < $2
	          ORDER BY expires_at, id
	          LIMIT $3`
	var ids []int64
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &ids, query, domain.ReservationStatusPending, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list expired holds: %w", mapError(err))
	}
	return ids, nil
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE user_id = $1
	          ORDER BY start_date DESC, id DESC
	          LIMIT $2 OFFSET $3`
	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list reservations for user %d: %w", userID, mapError(err))
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
