package domain

import "time"

const (
	DateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// NormalizeDate truncates t to midnight UTC of its calendar date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StayRange is the half-open interval [CheckIn, CheckOut) of nights.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	r := StayRange{CheckIn: NormalizeDate(checkIn), CheckOut: NormalizeDate(checkOut)}
	if !r.CheckIn.Before(r.CheckOut) {
		return StayRange{}, ErrInvalidRange
	}
	return r, nil
}

// Nights lists every occupied date in ascending order. Every multi-row lock
// acquisition walks this slice front to back.
func (r StayRange) Nights() []time.Time {
	nights := make([]time.Time, 0, r.Len())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// Len counts nights without enumerating them. Both ends are UTC midnight,
// so the difference is a whole number of days.
func (r StayRange) Len() int {
	return int((r.CheckOut.Unix() - r.CheckIn.Unix()) / secondsPerDay)
}

func (r StayRange) Contains(date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}
