package model

import "time"

// Booking status values.
const (
	BookingUpcoming  = "UPCOMING"
	BookingConverted = "CONVERTED"
)

// Booking is a lightweight precursor to a session: a customer reserves
// devices for a future time and the background converter turns the
// booking into a live session once that time arrives.
//
// Fields:
//  ID           – primary key identifier.
//  CustomerName – who booked.
//  BookingTime  – requested start time.  Also the pricing anchor when
//                 the booking is converted.
//  Devices      – requested device units.
//  PeopleCount  – expected headcount.
//  Status       – UPCOMING until converted.
//  SessionID    – the session created on conversion, nil before then.
//  CreatedAt    – creation timestamp.
type Booking struct {
	ID           uint64       // bookings.id
	CustomerName string       // bookings.customer_name
	BookingTime  time.Time    // bookings.booking_time
	Devices      DeviceClaims // bookings.devices (JSON)
	PeopleCount  int          // bookings.people_count
	Status       string       // bookings.status
	SessionID    *uint64      // bookings.session_id (nullable)
	CreatedAt    time.Time    // bookings.created_at
}
