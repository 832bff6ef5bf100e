package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// SubscriptionRepo persists recurring service subscriptions (internet,
// game catalog licences and the like) tracked for running costs.
type SubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo returns a new SubscriptionRepo bound to the given
// database.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Create inserts a subscription and populates the generated ID.
func (r *SubscriptionRepo) Create(ctx context.Context, s *model.Subscription) error {
	const q = `INSERT INTO subscriptions (type, provider, cost, start_date, expiry_date)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.Type, s.Provider, s.Cost, s.StartDate.UTC(), s.ExpiryDate.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Get loads one subscription by id.
func (r *SubscriptionRepo) Get(ctx context.Context, id uint64) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.QueryRowContext(ctx,
		"SELECT id, type, provider, cost, start_date, expiry_date FROM subscriptions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Type, &s.Provider, &s.Cost, &s.StartDate, &s.ExpiryDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all subscriptions, soonest expiry first.
func (r *SubscriptionRepo) List(ctx context.Context) ([]model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, type, provider, cost, start_date, expiry_date FROM subscriptions ORDER BY expiry_date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Subscription
	for rows.Next() {
		var s model.Subscription
		if err := rows.Scan(&s.ID, &s.Type, &s.Provider, &s.Cost, &s.StartDate, &s.ExpiryDate); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a subscription.
func (r *SubscriptionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id=?", id)
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
