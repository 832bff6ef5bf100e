package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// BookingRepo provides CRUD operations for advance bookings.  A booking
// reserves a future slot; the scheduler converts due bookings into live
// sessions and links them via session_id.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, customer_name, booking_time, devices, people_count, status, session_id, created_at`

// Create inserts a booking and populates the generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	devices, err := marshalClaims(b.Devices)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings (customer_name, booking_time, devices, people_count, status)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.CustomerName, b.BookingTime.UTC(), devices, b.PeopleCount, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt = time.Now().UTC()
	return nil
}

// Get loads one booking by id.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// List returns all bookings, soonest slot first.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY booking_time ASC")
}

// ListUpcoming returns bookings still waiting for their slot.
func (r *BookingRepo) ListUpcoming(ctx context.Context) ([]model.Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE status=? ORDER BY booking_time ASC",
		model.BookingUpcoming)
}

// ListDue returns upcoming bookings whose slot time has arrived.
func (r *BookingRepo) ListDue(ctx context.Context, now time.Time) ([]model.Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE status=? AND booking_time<=? ORDER BY booking_time ASC",
		model.BookingUpcoming, now.UTC())
}

// MarkConverted flips a booking to CONVERTED and links the created
// session.
func (r *BookingRepo) MarkConverted(ctx context.Context, id, sessionID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=?, session_id=? WHERE id=? AND status=?",
		model.BookingConverted, sessionID, id, model.BookingUpcoming)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes a booking.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBooking(sc scanner) (*model.Booking, error) {
	var (
		b         model.Booking
		raw       []byte
		sessionID sql.NullInt64
	)
	err := sc.Scan(&b.ID, &b.CustomerName, &b.BookingTime, &raw,
		&b.PeopleCount, &b.Status, &sessionID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.Devices, err = unmarshalClaims(raw); err != nil {
		return nil, err
	}
	if sessionID.Valid {
		id := uint64(sessionID.Int64)
		b.SessionID = &id
	}
	return &b, nil
}
