package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// SalaryRepo persists staff salary payment records.
type SalaryRepo struct {
	db *sql.DB
}

// NewSalaryRepo returns a new SalaryRepo bound to the given database.
func NewSalaryRepo(db *sql.DB) *SalaryRepo { return &SalaryRepo{db: db} }

// Create inserts a salary payment and populates the generated ID.
func (r *SalaryRepo) Create(ctx context.Context, s *model.Salary) error {
	const q = `INSERT INTO salaries (employee_name, role_label, amount, payment_date, note)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.EmployeeName, s.RoleLabel, s.Amount, s.PaymentDate.UTC(), s.Note)
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

// Get loads one salary payment by id.
func (r *SalaryRepo) Get(ctx context.Context, id uint64) (*model.Salary, error) {
	var s model.Salary
	err := r.db.QueryRowContext(ctx,
		"SELECT id, employee_name, role_label, amount, payment_date, note FROM salaries WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.EmployeeName, &s.RoleLabel, &s.Amount, &s.PaymentDate, &s.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all salary payments, most recent first.
func (r *SalaryRepo) List(ctx context.Context) ([]model.Salary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, employee_name, role_label, amount, payment_date, note FROM salaries ORDER BY payment_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Salary
	for rows.Next() {
		var s model.Salary
		if err := rows.Scan(&s.ID, &s.EmployeeName, &s.RoleLabel, &s.Amount, &s.PaymentDate, &s.Note); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a salary payment record.
func (r *SalaryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM salaries WHERE id=?", id)
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
