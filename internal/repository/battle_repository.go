package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// BattleRepo provides CRUD operations for crown battles.  Score
// increments are applied in SQL rather than read-modify-write so two
// staff tablets bumping the same battle never lose an update.
type BattleRepo struct {
	db *sql.DB
}

// NewBattleRepo returns a new BattleRepo bound to the given database.
func NewBattleRepo(db *sql.DB) *BattleRepo { return &BattleRepo{db: db} }

const battleColumns = `id, crown_holder, challenger, crown_score, challenger_score, status, start_time, end_time`

// Create opens a battle between the reigning crown holder and a
// challenger.
func (r *BattleRepo) Create(ctx context.Context, b *model.Battle) error {
	const q = `INSERT INTO battles (crown_holder, challenger, status, start_time)
		VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.CrownHolder, b.Challenger, b.Status, b.StartTime.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Get loads one battle by id.
func (r *BattleRepo) Get(ctx context.Context, id uint64) (*model.Battle, error) {
	var (
		b       model.Battle
		endTime sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+battleColumns+" FROM battles WHERE id=? LIMIT 1", id).
		Scan(&b.ID, &b.CrownHolder, &b.Challenger, &b.CrownScore, &b.ChallengerScore,
			&b.Status, &b.StartTime, &endTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		b.EndTime = &t
	}
	return &b, nil
}

// List returns all battles, newest first.
func (r *BattleRepo) List(ctx context.Context) ([]model.Battle, error) {
	return r.listWhere(ctx,
		"SELECT "+battleColumns+" FROM battles ORDER BY start_time DESC")
}

// ListByStatus returns battles in one state: ACTIVE for the floor
// board, COMPLETED for the leaderboard.
func (r *BattleRepo) ListByStatus(ctx context.Context, status string) ([]model.Battle, error) {
	return r.listWhere(ctx,
		"SELECT "+battleColumns+" FROM battles WHERE status=? ORDER BY start_time DESC", status)
}

func (r *BattleRepo) listWhere(ctx context.Context, q string, args ...any) ([]model.Battle, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Battle
	for rows.Next() {
		var (
			b       model.Battle
			endTime sql.NullTime
		)
		if err := rows.Scan(&b.ID, &b.CrownHolder, &b.Challenger, &b.CrownScore,
			&b.ChallengerScore, &b.Status, &b.StartTime, &endTime); err != nil {
			return nil, err
		}
		if endTime.Valid {
			t := endTime.Time
			b.EndTime = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// IncrementScore bumps one side's score atomically.  side must be
// "crown" or "challenger".  Only active battles accept points.
func (r *BattleRepo) IncrementScore(ctx context.Context, id uint64, side string) error {
	var column string
	switch side {
	case "crown":
		column = "crown_score"
	case "challenger":
		column = "challenger_score"
	default:
		return errors.New("unknown battle side: " + side)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE battles SET "+column+" = "+column+" + 1 WHERE id=? AND status=?",
		id, model.BattleActive)
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

// Complete marks a battle finished and stamps its end time.
func (r *BattleRepo) Complete(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE battles SET status=?, end_time=? WHERE id=? AND status=?",
		model.BattleCompleted, at.UTC(), id, model.BattleActive)
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

// Delete removes a battle record.
func (r *BattleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM battles WHERE id=?", id)
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
