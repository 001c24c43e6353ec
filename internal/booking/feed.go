package booking

import (
	"context"
	"time"

	"github.com/ghaggin/coachportal/internal/model"
	"github.com/jonboulle/clockwork"
)

type Reason string

const (
	ReasonTick      Reason = "tick"
	ReasonScheduled Reason = "scheduled"
)

// Update is one refetch of the booking list.
type Update struct {
	Reason   Reason
	At       time.Time
	Bookings []model.Booking
	Err      error
}

type Fetcher func(ctx context.Context) ([]model.Booking, error)

// Feed refetches bookings on a fixed interval and shortly after each
// scheduling signal, giving the backend time to record the new event.
// Signals arriving within the delay collapse into one refetch.
type Feed struct {
	clock    clockwork.Clock
	interval time.Duration
	delay    time.Duration
	fetch    Fetcher
}

func NewFeed(clock clockwork.Clock, interval, delay time.Duration, fetch Fetcher) *Feed {
	return &Feed{
		clock:    clock,
		interval: interval,
		delay:    delay,
		fetch:    fetch,
	}
}

// Run emits updates until ctx is done. emit is called from Run's
// goroutine only.
func (f *Feed) Run(ctx context.Context, signals <-chan struct{}, emit func(Update)) error {
	ticker := f.clock.NewTicker(f.interval)
	defer ticker.Stop()

	var (
		pending clockwork.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			emit(f.load(ctx, ReasonTick))
		case <-signals:
			if pending != nil {
				pending.Stop()
			}
			pending = f.clock.NewTimer(f.delay)
			fire = pending.Chan()
		case <-fire:
			pending, fire = nil, nil
			emit(f.load(ctx, ReasonScheduled))
		}
	}
}

func (f *Feed) load(ctx context.Context, reason Reason) Update {
	bookings, err := f.fetch(ctx)
	return Update{
		Reason:   reason,
		At:       f.clock.Now(),
		Bookings: bookings,
		Err:      err,
	}
}
