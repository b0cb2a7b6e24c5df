package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"userId"`
	RoomID        int64             `json:"roomId"`
	Quantity      int               `json:"quantity"`
	Adults        int               `json:"adults"`
	Children      int               `json:"children"`
	StayStart     time.Time         `json:"stayStart"`
	StayEnd       time.Time         `json:"stayEnd"`
	Status        ReservationStatus `json:"status"`
	ExpiresAt     *time.Time        `json:"expiresAt,omitempty"`
	TransactionID *string           `json:"transactionId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (r *Reservation) Stay() StayRange {
	return StayRange{CheckIn: NormalizeDate(r.StayStart), CheckOut: NormalizeDate(r.StayEnd)}
}

// IsExpired reports whether a hold's TTL has elapsed at now.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// HoldRequest carries the caller's input for a new hold.
type HoldRequest struct {
	UserID      int64
	RoomID      int64
	Quantity    int
	CheckIn     time.Time
	CheckOut    time.Time
	Adults      int
	Children    int
	HoldSeconds int
}

type HoldResult struct {
	ReservationID int64             `json:"reservationId"`
	ExpiresAt     time.Time         `json:"expiresAt"`
	Status        ReservationStatus `json:"status"`
}
