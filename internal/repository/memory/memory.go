// Package memory is an in-process store with the same transactional
// contract as the postgres store. Row locks are per-key semaphores held
// until the owning transaction ends; writes are buffered on the
// transaction and become visible together on commit.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hotel-booking-backend/internal/clock"
	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/repository"
)

var (
	_ repository.Transactor            = (*Store)(nil)
	_ repository.InventoryRepository   = (*Store)(nil)
	_ repository.ReservationRepository = (*Store)(nil)
	_ repository.RoomRepository        = (*Store)(nil)
	_ repository.RoomCatalogWriter     = (*Store)(nil)
)

const defaultLockTimeout = 5 * time.Second

type inventoryKey struct {
	roomID int64
	date   string
}

func keyFor(roomID int64, date time.Time) inventoryKey {
	return inventoryKey{roomID: roomID, date: domain.FormatDate(date)}
}

func (k inventoryKey) lockName() string {
	return fmt.Sprintf("inv:%d:%s", k.roomID, k.date)
}

func reservationLockName(id int64) string {
	return fmt.Sprintf("res:%d", id)
}

type Store struct {
	mu           sync.RWMutex
	inventory    map[inventoryKey]domain.LedgerEntry
	reservations map[int64]domain.Reservation
	hotels       map[int64]int64

	locksMu sync.Mutex
	locks   map[string]*rowLock

	nextID      atomic.Int64
	lockTimeout time.Duration
	clock       clock.Clock
}

type Option func(*Store)

func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.lockTimeout = d
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithRoom registers a catalog room so projections can resolve its hotel.
func WithRoom(roomID, hotelID int64) Option {
	return func(s *Store) {
		s.hotels[roomID] = hotelID
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		inventory:    make(map[inventoryKey]domain.LedgerEntry),
		reservations: make(map[int64]domain.Reservation),
		hotels:       make(map[int64]int64),
		locks:        make(map[string]*rowLock),
		lockTimeout:  defaultLockTimeout,
		clock:        clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRoom registers a catalog room after construction.
func (s *Store) AddRoom(roomID, hotelID int64) {
	s.mu.Lock()
	s.hotels[roomID] = hotelID
	s.mu.Unlock()
}

// UpsertRoom implements repository.RoomCatalogWriter.
func (s *Store) UpsertRoom(_ context.Context, roomID, hotelID int64, _ string) error {
	s.AddRoom(roomID, hotelID)
	return nil
}

type tx struct {
	store        *Store
	held         map[string]chan struct{}
	inventory    map[inventoryKey]domain.LedgerEntry
	reservations map[int64]domain.Reservation
}

type txKey struct{}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// WithTx implements repository.Transactor.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	t := &tx{
		store:        s,
		held:         make(map[string]chan struct{}),
		inventory:    make(map[inventoryKey]domain.LedgerEntry),
		reservations: make(map[int64]domain.Reservation),
	}
	defer t.release()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	t.commit()
	return nil
}

// inTx runs fn on the caller's transaction, or on a short one of its own.
func (s *Store) inTx(ctx context.Context, fn func(t *tx) error) error {
	if t := txFromContext(ctx); t != nil {
		return fn(t)
	}
	return s.WithTx(ctx, func(ctx context.Context) error {
		return fn(txFromContext(ctx))
	})
}

// rowLock is a one-slot semaphore. refs counts the holder and waiters; the
// entry is dropped from Store.locks when it reaches zero.
type rowLock struct {
	ch   chan struct{}
	refs int
}

func (s *Store) acquireRef(name string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.locks[name] = l
	}
	l.refs++
	return l.ch
}

func (s *Store) releaseRef(name string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		return
	}
	if l.refs--; l.refs <= 0 {
		delete(s.locks, name)
	}
}

// LockCount reports how many row locks are held or awaited.
func (s *Store) LockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

// lock blocks until the transaction owns name, the lock timeout passes or
// ctx is done. Re-locking a key the transaction already owns is a no-op.
func (t *tx) lock(ctx context.Context, name string) error {
	if _, ok := t.held[name]; ok {
		return nil
	}
	ch := t.store.acquireRef(name)

	select {
	case ch <- struct{}{}:
		t.held[name] = ch
		return nil
	default:
	}

	timer := time.NewTimer(t.store.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		t.held[name] = ch
		return nil
	case <-timer.C:
		t.store.releaseRef(name)
		return fmt.Errorf("%w: %s", domain.ErrLockTimeout, name)
	case <-ctx.Done():
		t.store.releaseRef(name)
		return fmt.Errorf("%w: %s: %v", domain.ErrLockTimeout, name, ctx.Err())
	}
}

func (t *tx) holds(name string) bool {
	_, ok := t.held[name]
	return ok
}

func (t *tx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range t.inventory {
		s.inventory[k] = e
	}
	for id, r := range t.reservations {
		s.reservations[id] = r
	}
}

func (t *tx) release() {
	for name, ch := range t.held {
		<-ch
		t.store.releaseRef(name)
		delete(t.held, name)
	}
}
