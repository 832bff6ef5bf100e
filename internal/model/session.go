package model

import "time"

// Session status values.  A session is created ACTIVE and transitions
// to COMPLETED exactly once; deletion is a separate, unconditional
// removal that bypasses completion.
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
)

// Session is one customer group's paid device-usage period.  It is the
// ledger aggregate of the pricing engine: cumulative duration, price
// and headcount only ever grow, and partial payments are tracked by
// headcount so the remaining balance can be split fairly per unpaid
// person.
//
// Fields:
//  ID              – primary key identifier, immutable.
//  CustomerName    – name the session was opened under.
//  ContactNumber   – optional phone number.
//  StartTime       – anchor for tariff classification, immutable.  The
//                    pricing window is fixed at this instant; later
//                    extensions are priced in the same window.
//  DurationMinutes – cumulative allocated minutes, increases only.
//  PeopleCount     – cumulative headcount, increases only.
//  Devices         – claimed device units, merged additively.
//  Snacks          – free-form snacks note.
//  Price           – cumulative total owed, whole currency units.
//  PaidAmount      – cumulative amount settled so far.
//  PaidPeople      – heads whose share has been settled.
//  Members         – append-only audit trail of member additions.
//  Status          – ACTIVE or COMPLETED.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last mutation timestamp.
//  CompletedAt     – completion timestamp, nil while active.
type Session struct {
	ID              uint64          // sessions.id
	CustomerName    string          // sessions.customer_name
	ContactNumber   string          // sessions.contact_number
	StartTime       time.Time       // sessions.start_time
	DurationMinutes int             // sessions.duration_minutes
	PeopleCount     int             // sessions.people_count
	Devices         DeviceClaims    // sessions.devices (JSON)
	Snacks          string          // sessions.snacks
	Price           int64           // sessions.price
	PaidAmount      int64           // sessions.paid_amount
	PaidPeople      int             // sessions.paid_people
	Members         []SessionMember // session_members rows
	Status          string          // sessions.status
	CreatedAt       time.Time       // sessions.created_at
	UpdatedAt       time.Time       // sessions.updated_at
	CompletedAt     *time.Time      // sessions.completed_at (nullable)
}

// RemainingAmount is the balance still owed.  Always derived, never
// stored independently.
func (s *Session) RemainingAmount() int64 { return s.Price - s.PaidAmount }

// RemainingHeads is the number of people whose share is unsettled.
func (s *Session) RemainingHeads() int { return s.PeopleCount - s.PaidPeople }

// SessionMember records one member addition to a running session.
// Records are append-only; they are never mutated or removed.
//
// Fields:
//  ID            – primary key identifier.
//  SessionID     – owning session.
//  Name          – who joined.
//  PeopleCount   – heads added with this record.
//  Devices       – device units claimed by the joining members.
//  ChargedAmount – incremental price folded into the session for this
//                  addition.
//  CreatedAt     – when the member joined.
type SessionMember struct {
	ID            uint64       // session_members.id
	SessionID     uint64       // session_members.session_id
	Name          string       // session_members.name
	PeopleCount   int          // session_members.people_count
	Devices       DeviceClaims // session_members.devices (JSON)
	ChargedAmount int64        // session_members.charged_amount
	CreatedAt     time.Time    // session_members.created_at
}
