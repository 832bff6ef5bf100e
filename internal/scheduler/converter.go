// Package scheduler runs the background loop that turns due bookings
// into live sessions.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/gamezone-floor/internal/ledger"
	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/observability"
)

type bookingSource interface {
	ListDue(ctx context.Context, now time.Time) ([]model.Booking, error)
	MarkConverted(ctx context.Context, id, sessionID uint64) error
}

type sessionOpener interface {
	Create(ctx context.Context, in ledger.CreateInput) (*model.Session, error)
}

// Converter scans for bookings whose slot time has arrived and opens a
// session for each. The session is priced at the booking's slot time,
// not the scan time, so a late tick never shifts the tariff window.
type Converter struct {
	bookings bookingSource
	sessions sessionOpener
	interval time.Duration
	// duration granted to converted sessions before the party asks
	// for more time
	initialMinutes int
	now            func() time.Time
}

// NewConverter builds a converter ticking at the given interval.
func NewConverter(bookings bookingSource, sessions sessionOpener, interval time.Duration) *Converter {
	return &Converter{
		bookings:       bookings,
		sessions:       sessions,
		interval:       interval,
		initialMinutes: 60,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the scan loop until the context is cancelled.
func (c *Converter) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Printf("booking-converter: started, interval=%s", c.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("booking-converter: stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Converter) tick(ctx context.Context) {
	due, err := c.bookings.ListDue(ctx, c.now())
	if err != nil {
		log.Printf("booking-converter: list due bookings failed: %v", err)
		return
	}

	for _, b := range due {
		session, err := c.sessions.Create(ctx, ledger.CreateInput{
			CustomerName:    b.CustomerName,
			StartTime:       b.BookingTime,
			DurationMinutes: c.initialMinutes,
			PeopleCount:     b.PeopleCount,
			Devices:         b.Devices,
		})
		if err != nil {
			// A conflicting walk-in may hold the booked unit; leave
			// the booking UPCOMING and retry next tick.
			log.Printf("booking-converter: booking %d not converted: %v", b.ID, err)
			observability.IncBookingConverted(err)
			continue
		}
		if err := c.bookings.MarkConverted(ctx, b.ID, session.ID); err != nil {
			log.Printf("booking-converter: mark booking %d converted failed: %v", b.ID, err)
			continue
		}
		observability.IncBookingConverted(nil)
		log.Printf("booking-converter: booking %d converted to session %d", b.ID, session.ID)
	}
}
