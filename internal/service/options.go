package service

import (
	"time"

	"hotel-booking-backend/internal/clock"
)

const (
	DefaultCapacity       = 5
	DefaultHoldSeconds    = 30
	DefaultMaxHoldSeconds = 3600
	DefaultMaxNights      = 30
	DefaultPageSize       = 10
	DefaultMaxPageSize    = 100

	maxCalendarNights = 366
)

// Options holds the tunables shared by every service.
type Options struct {
	DefaultCapacity    int
	DefaultHoldSeconds int
	MaxHoldSeconds     int
	MaxNights          int
	DefaultPageSize    int
	MaxPageSize        int
	Clock              clock.Clock
}

type Option func(*Options)

func newOptions(opts []Option) Options {
	o := Options{
		DefaultCapacity:    DefaultCapacity,
		DefaultHoldSeconds: DefaultHoldSeconds,
		MaxHoldSeconds:     DefaultMaxHoldSeconds,
		MaxNights:          DefaultMaxNights,
		DefaultPageSize:    DefaultPageSize,
		MaxPageSize:        DefaultMaxPageSize,
		Clock:              clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// WithDefaultCapacity sets the units a room-night starts with before it is provisioned.
func WithDefaultCapacity(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.DefaultCapacity = n
		}
	}
}

func WithHoldSeconds(def, max int) Option {
	return func(o *Options) {
		if def > 0 {
			o.DefaultHoldSeconds = def
		}
		if max > 0 {
			o.MaxHoldSeconds = max
		}
	}
}

func WithMaxNights(n int) Option {
	return func(o *Options) {
		o.MaxNights = n
	}
}

func WithPageSize(def, max int) Option {
	return func(o *Options) {
		if def > 0 {
			o.DefaultPageSize = def
		}
		if max > 0 {
			o.MaxPageSize = max
		}
	}
}

// holdDuration resolves a requested TTL. Zero or negative means the
// default; anything above the ceiling is clamped.
func (o Options) holdDuration(requested int) time.Duration {
	secs := requested
	if secs <= 0 {
		secs = o.DefaultHoldSeconds
	}
	if o.MaxHoldSeconds > 0 && secs > o.MaxHoldSeconds {
		secs = o.MaxHoldSeconds
	}
	return time.Duration(secs) * time.Second
}

// pageWindow turns a 0-based page and a size into limit and offset.
func (o Options) pageWindow(page, size int) (int, int) {
	if size <= 0 {
		size = o.DefaultPageSize
	}
	if size > o.MaxPageSize {
		size = o.MaxPageSize
	}
	if page < 0 {
		page = 0
	}
	return size, page * size
}
