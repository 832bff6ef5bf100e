package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gamezone-floor/internal/ledger"
	"github.com/iliyamo/gamezone-floor/internal/model"
)

type fakeBookings struct {
	mu        sync.Mutex
	due       []model.Booking
	converted map[uint64]uint64 // booking id -> session id
	listErr   error
}

func (f *fakeBookings) ListDue(_ context.Context, _ time.Time) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Booking
	for _, b := range f.due {
		if _, done := f.converted[b.ID]; !done {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) MarkConverted(_ context.Context, id, sessionID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.converted == nil {
		f.converted = make(map[uint64]uint64)
	}
	f.converted[id] = sessionID
	return nil
}

type fakeOpener struct {
	mu      sync.Mutex
	nextID  uint64
	inputs  []ledger.CreateInput
	failFor map[string]error // keyed by customer name
}

func (f *fakeOpener) Create(_ context.Context, in ledger.CreateInput) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[in.CustomerName]; err != nil {
		return nil, err
	}
	f.nextID++
	f.inputs = append(f.inputs, in)
	return &model.Session{ID: f.nextID, Status: model.SessionActive}, nil
}

func TestConverterOpensSessionsForDueBookings(t *testing.T) {
	slot := time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC)
	bookings := &fakeBookings{
		due: []model.Booking{
			{
				ID:           1,
				CustomerName: "Ana",
				BookingTime:  slot,
				PeopleCount:  2,
				Devices:      model.DeviceClaims{model.DevicePS: {1}},
				Status:       model.BookingUpcoming,
			},
		},
	}
	opener := &fakeOpener{}
	c := NewConverter(bookings, opener, 10*time.Millisecond)

	c.tick(context.Background())

	require.Len(t, opener.inputs, 1)
	in := opener.inputs[0]
	assert.Equal(t, "Ana", in.CustomerName)
	assert.Equal(t, slot, in.StartTime, "session priced at the slot time, not scan time")
	assert.Equal(t, 2, in.PeopleCount)
	assert.Equal(t, []int{1}, in.Devices[model.DevicePS])
	assert.Equal(t, uint64(1), bookings.converted[1])
}

func TestConverterSkipsConflictingBooking(t *testing.T) {
	slot := time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC)
	bookings := &fakeBookings{
		due: []model.Booking{
			{ID: 1, CustomerName: "Ana", BookingTime: slot, PeopleCount: 1, Status: model.BookingUpcoming},
			{ID: 2, CustomerName: "Bo", BookingTime: slot, PeopleCount: 1, Status: model.BookingUpcoming},
		},
	}
	opener := &fakeOpener{failFor: map[string]error{"Ana": ledger.ErrDeviceConflict}}
	c := NewConverter(bookings, opener, 10*time.Millisecond)

	c.tick(context.Background())

	// Ana stays UPCOMING for a retry; Bo converts.
	assert.NotContains(t, bookings.converted, uint64(1))
	assert.Contains(t, bookings.converted, uint64(2))

	// The conflicting unit freed up before the next tick.
	opener.failFor = nil
	c.tick(context.Background())
	assert.Contains(t, bookings.converted, uint64(1))
}

func TestConverterToleratesListError(t *testing.T) {
	bookings := &fakeBookings{listErr: errors.New("db down")}
	opener := &fakeOpener{}
	c := NewConverter(bookings, opener, 10*time.Millisecond)

	c.tick(context.Background())
	assert.Empty(t, opener.inputs)
}

func TestConverterStopsOnContextCancel(t *testing.T) {
	bookings := &fakeBookings{}
	opener := &fakeOpener{}
	c := NewConverter(bookings, opener, time.Second) // interval longer than test

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
		// success
	case <-time.After(time.Second):
		t.Fatal("converter did not stop on context cancel")
	}
}
