package domain

import "time"

// ReservationDetail is the single-reservation projection shown to guests.
type ReservationDetail struct {
	ID            int64      `json:"id"`
	Status        string     `json:"status"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	HotelID       *int64     `json:"hotelId"`
	UserID        int64      `json:"userId"`
	RoomID        int64      `json:"roomId"`
	NumRooms      int        `json:"numRooms"`
	Adults        int        `json:"adults"`
	Children      int        `json:"children"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	TransactionID *string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type ReservationSummary struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	UserID    int64     `json:"userId"`
	RoomID    int64     `json:"roomId"`
	HotelID   *int64    `json:"hotelId"`
	NumRooms  int       `json:"numRooms"`
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// NightAvailability is one row of a room's availability calendar.
type NightAvailability struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}
