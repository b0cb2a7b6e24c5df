package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange          = errors.New("check-out must be after check-in")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrInvalidGuests         = errors.New("guest counts must not be negative")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrAlreadyProcessed      = errors.New("reservation already processed")
	ErrHoldExpired           = errors.New("hold expired")
	ErrLedgerInconsistent    = errors.New("inventory ledger inconsistent")
	ErrCapacityBelowConsumed = errors.New("capacity below consumed units")
	ErrLockTimeout           = errors.New("timed out waiting for inventory lock")
)

// InsufficientInventoryError names the first night that could not cover a hold.
type InsufficientInventoryError struct {
	RoomID    int64
	Date      time.Time
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for room %d on %s: requested %d, available %d",
		e.RoomID, FormatDate(e.Date), e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// AlreadyProcessedError reports the status a reservation had when a
// transition was refused.
type AlreadyProcessedError struct {
	ReservationID int64
	Status        ReservationStatus
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("reservation %d already processed: %s", e.ReservationID, e.Status)
}

func (e *AlreadyProcessedError) Unwrap() error {
	return ErrAlreadyProcessed
}
