package domain

import (
	"fmt"
	"time"
)

// LedgerEntry is the per-room, per-night inventory counter.
// AvailableQuantity must stay within [0, TotalQuantity].
type LedgerEntry struct {
	RoomID            int64     `json:"roomId"`
	Date              time.Time `json:"date"`
	TotalQuantity     int       `json:"totalQuantity"`
	AvailableQuantity int       `json:"availableQuantity"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewLedgerEntry builds a fresh entry with every unit available.
func NewLedgerEntry(roomID int64, date time.Time, capacity int) *LedgerEntry {
	return &LedgerEntry{
		RoomID:            roomID,
		Date:              NormalizeDate(date),
		TotalQuantity:     capacity,
		AvailableQuantity: capacity,
	}
}

func (e *LedgerEntry) CanReserve(qty int) bool {
	return e.AvailableQuantity >= qty
}

// Decrement takes qty units out of the entry.
func (e *LedgerEntry) Decrement(qty int) error {
	if !e.CanReserve(qty) {
		return &InsufficientInventoryError{
			RoomID:    e.RoomID,
			Date:      e.Date,
			Requested: qty,
			Available: e.AvailableQuantity,
		}
	}
	e.AvailableQuantity -= qty
	return nil
}

// Increment returns qty units to the entry. Exceeding the total means the
// ledger and the reservations disagree; the entry is clamped and
// ErrLedgerInconsistent is returned so the caller can roll back.
func (e *LedgerEntry) Increment(qty int) error {
	next := e.AvailableQuantity + qty
	if next > e.TotalQuantity {
		e.AvailableQuantity = e.TotalQuantity
		return fmt.Errorf("%w: room %d on %s would reach %d of %d",
			ErrLedgerInconsistent, e.RoomID, FormatDate(e.Date), next, e.TotalQuantity)
	}
	e.AvailableQuantity = next
	return nil
}

// Consumed is the number of units currently held or booked.
func (e *LedgerEntry) Consumed() int {
	return e.TotalQuantity - e.AvailableQuantity
}

// Reprovision changes the capacity of the entry while keeping consumed units.
func (e *LedgerEntry) Reprovision(total int) error {
	if total < 0 {
		return ErrInvalidQuantity
	}
	consumed := e.Consumed()
	if total < consumed {
		return fmt.Errorf("%w: room %d on %s has %d units consumed",
			ErrCapacityBelowConsumed, e.RoomID, FormatDate(e.Date), consumed)
	}
	e.TotalQuantity = total
	e.AvailableQuantity = total - consumed
	return nil
}

// ProvisionRequest sets the capacity of a room for every night in [From, To).
type ProvisionRequest struct {
	RoomID int64
	From   time.Time
	To     time.Time
	Total  int
}
