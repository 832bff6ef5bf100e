package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gamezone-floor/internal/ledger"
	"github.com/iliyamo/gamezone-floor/internal/model"
)

// SessionRepo provides CRUD operations for sessions and their member
// additions.  Device claims are stored as a JSON column mapping device
// kind to the claimed unit numbers.  All timestamp fields are stored
// in UTC.  SessionRepo satisfies ledger.Store.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

var _ ledger.Store = (*SessionRepo)(nil)

const sessionColumns = `id, customer_name, contact_number, start_time, duration_minutes,
	people_count, devices, snacks, price, paid_amount, paid_people, status,
	created_at, updated_at, completed_at`

// Insert creates a session row and populates the generated ID and
// timestamps on the given session.
func (r *SessionRepo) Insert(ctx context.Context, s *model.Session) error {
	devices, err := marshalClaims(s.Devices)
	if err != nil {
		return err
	}
	const q = `INSERT INTO sessions
		(customer_name, contact_number, start_time, duration_minutes, people_count,
		 devices, snacks, price, paid_amount, paid_people, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.CustomerName, s.ContactNumber, s.StartTime.UTC(), s.DurationMinutes,
		s.PeopleCount, devices, s.Snacks, s.Price, s.PaidAmount, s.PaidPeople, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// Get loads one session with its member additions.
func (r *SessionRepo) Get(ctx context.Context, id uint64) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id=? LIMIT 1", id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrSessionNotFound
		}
		return nil, err
	}
	members, err := r.membersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Members = members
	return s, nil
}

// Update writes the mutable session fields back.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	devices, err := marshalClaims(s.Devices)
	if err != nil {
		return err
	}
	const q = `UPDATE sessions SET
		duration_minutes=?, people_count=?, devices=?, snacks=?,
		price=?, paid_amount=?, paid_people=?, status=?, completed_at=?
		WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		s.DurationMinutes, s.PeopleCount, devices, s.Snacks,
		s.Price, s.PaidAmount, s.PaidPeople, s.Status, nullTime(s.CompletedAt), s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update; confirm existence before reporting not found.
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM sessions WHERE id=? LIMIT 1", s.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ledger.ErrSessionNotFound
			}
			return err
		}
	}
	return nil
}

// ApplyMember persists the updated session totals together with the new
// member record in one transaction, so a crash cannot leave the totals
// and the audit trail disagreeing.
func (r *SessionRepo) ApplyMember(ctx context.Context, s *model.Session, m *model.SessionMember) error {
	devices, err := marshalClaims(s.Devices)
	if err != nil {
		return err
	}
	memberDevices, err := marshalClaims(m.Devices)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upd = `UPDATE sessions SET people_count=?, devices=?, price=? WHERE id=?`
	if _, err := tx.ExecContext(ctx, upd, s.PeopleCount, devices, s.Price, s.ID); err != nil {
		return err
	}

	const ins = `INSERT INTO session_members
		(session_id, name, people_count, devices, charged_amount)
		VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, s.ID, m.Name, m.PeopleCount, memberDevices, m.ChargedAmount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = time.Now().UTC()
	return nil
}

// Delete removes a session; member rows go with it via the FK cascade.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrSessionNotFound
	}
	return nil
}

// ListActive returns sessions currently on the floor, oldest first.
func (r *SessionRepo) ListActive(ctx context.Context) ([]model.Session, error) {
	return r.listByStatus(ctx, model.SessionActive, "start_time ASC")
}

// ListCompleted returns finished sessions, most recent first.
func (r *SessionRepo) ListCompleted(ctx context.Context) ([]model.Session, error) {
	return r.listByStatus(ctx, model.SessionCompleted, "completed_at DESC")
}

// ListCompletedBetween returns completed sessions whose completion time
// falls in [from, to), most recent first.
func (r *SessionRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	return r.list(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE status=? AND completed_at >= ? AND completed_at < ? ORDER BY completed_at DESC",
		model.SessionCompleted, from.UTC(), to.UTC())
}

func (r *SessionRepo) listByStatus(ctx context.Context, status, order string) ([]model.Session, error) {
	return r.list(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE status=? ORDER BY "+order, status)
}

func (r *SessionRepo) list(ctx context.Context, q string, args ...any) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// OccupiedUnits aggregates the unit claims of every active session.
func (r *SessionRepo) OccupiedUnits(ctx context.Context) (map[string][]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT devices FROM sessions WHERE status=?", model.SessionActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupied := make(map[string][]int)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		claims, err := unmarshalClaims(raw)
		if err != nil {
			return nil, err
		}
		for kind, units := range claims {
			occupied[kind] = append(occupied[kind], units...)
		}
	}
	return occupied, rows.Err()
}

// RevenueSummary aggregates completed sessions in [from, to).
type RevenueSummary struct {
	SessionCount   int
	TotalBilled    int64
	TotalCollected int64
}

// Revenue sums billed and collected amounts over completed sessions
// whose completion time falls in the given range.
func (r *SessionRepo) Revenue(ctx context.Context, from, to time.Time) (RevenueSummary, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(price),0), COALESCE(SUM(paid_amount),0)
		FROM sessions WHERE status=? AND completed_at >= ? AND completed_at < ?`
	var sum RevenueSummary
	err := r.db.QueryRowContext(ctx, q, model.SessionCompleted, from.UTC(), to.UTC()).
		Scan(&sum.SessionCount, &sum.TotalBilled, &sum.TotalCollected)
	return sum, err
}

func (r *SessionRepo) membersOf(ctx context.Context, sessionID uint64) ([]model.SessionMember, error) {
	const q = `SELECT id, session_id, name, people_count, devices, charged_amount, created_at
		FROM session_members WHERE session_id=? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SessionMember
	for rows.Next() {
		var (
			m   model.SessionMember
			raw []byte
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Name, &m.PeopleCount, &raw, &m.ChargedAmount, &m.CreatedAt); err != nil {
			return nil, err
		}
		if m.Devices, err = unmarshalClaims(raw); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface{ Scan(dest ...any) error }

func scanSession(sc scanner) (*model.Session, error) {
	var (
		s           model.Session
		raw         []byte
		completedAt sql.NullTime
	)
	err := sc.Scan(&s.ID, &s.CustomerName, &s.ContactNumber, &s.StartTime,
		&s.DurationMinutes, &s.PeopleCount, &raw, &s.Snacks, &s.Price,
		&s.PaidAmount, &s.PaidPeople, &s.Status, &s.CreatedAt, &s.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if s.Devices, err = unmarshalClaims(raw); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return &s, nil
}

func marshalClaims(c model.DeviceClaims) ([]byte, error) {
	if c == nil {
		c = model.DeviceClaims{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal device claims: %w", err)
	}
	return b, nil
}

func unmarshalClaims(raw []byte) (model.DeviceClaims, error) {
	if len(raw) == 0 {
		return model.DeviceClaims{}, nil
	}
	var c model.DeviceClaims
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal device claims: %w", err)
	}
	return c, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
