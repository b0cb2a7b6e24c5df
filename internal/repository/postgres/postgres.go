package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

const (
	pqLockNotAvailable = "55P03"
	pqQueryCanceled    = "57014"
	pqDeadlockDetected = "40P01"
)

type Store struct {
	db          *sqlx.DB
	lockTimeout time.Duration
	repository.InventoryRepository
	repository.ReservationRepository
	repository.RoomRepository
}

type Option func(*Store)

// WithLockTimeout bounds row-lock waits inside every transaction.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.lockTimeout = d
	}
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	xdb := sqlx.NewDb(db, "postgres")
	s := &Store{
		db:                    xdb,
		InventoryRepository:   NewInventoryRepository(xdb),
		ReservationRepository: NewReservationRepository(xdb),
		RoomRepository:        NewRoomRepository(xdb),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}

// WithTx implements repository.Transactor.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set lock timeout: %w", mapError(err))
		}
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", "error", rbErr, "cause", err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

// conn returns the transaction on ctx, or the pool when there is none.
func conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// mapError translates driver errors the service layer reacts to.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqLockNotAvailable, pqQueryCanceled, pqDeadlockDetected:
			return fmt.Errorf("%w: %s", domain.ErrLockTimeout, pqErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrLockTimeout, err)
	}
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
