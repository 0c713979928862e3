package payroll

import (
	"context"
	"database/sql"
	"errors"

	"dayflow/internal/store"
)

const slipColumns = `id, owner, month, year, basic_salary, allowances, deductions, net_salary,
	working_days, present_days, status, payment_date, generated_date, created_at, updated_at`

// PostgresStore persists slips with NUMERIC money columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS payrolls (
			id             TEXT PRIMARY KEY,
			owner          TEXT NOT NULL,
			month          TEXT NOT NULL,
			year           INTEGER NOT NULL,
			basic_salary   NUMERIC(14,2) NOT NULL,
			allowances     NUMERIC(14,2) NOT NULL DEFAULT 0,
			deductions     NUMERIC(14,2) NOT NULL DEFAULT 0,
			net_salary     NUMERIC(14,2) NOT NULL,
			working_days   INTEGER NOT NULL DEFAULT 0,
			present_days   INTEGER NOT NULL DEFAULT 0,
			status         TEXT NOT NULL DEFAULT 'Pending',
			payment_date   TIMESTAMPTZ,
			generated_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT payroll_owner_period_key UNIQUE (owner, month, year)
		);
	`)
	return err
}

func (r *PostgresStore) Insert(ctx context.Context, s Slip) (Slip, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payrolls (`+slipColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, s.ID, s.Owner, s.Month, s.Year, s.BasicSalary, s.Allowances, s.Deductions, s.NetSalary,
		s.WorkingDays, s.PresentDays, s.Status, s.PaymentDate, s.GeneratedDate, s.CreatedAt, s.UpdatedAt)
	if store.IsUniqueViolation(err) {
		return Slip{}, ErrDuplicate
	}
	if err != nil {
		return Slip{}, err
	}
	return s, nil
}

func (r *PostgresStore) Get(ctx context.Context, id string) (Slip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+slipColumns+` FROM payrolls WHERE id = $1`, id)
	s, err := scanSlip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Slip{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresStore) ListByOwner(ctx context.Context, owner string) ([]Slip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+slipColumns+` FROM payrolls
		WHERE owner = $1
		ORDER BY year DESC, month DESC, id ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Slip
	for rows.Next() {
		s, err := scanSlip(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func scanSlip(row interface{ Scan(dest ...any) error }) (Slip, error) {
	var s Slip
	err := row.Scan(&s.ID, &s.Owner, &s.Month, &s.Year, &s.BasicSalary, &s.Allowances, &s.Deductions, &s.NetSalary,
		&s.WorkingDays, &s.PresentDays, &s.Status, &s.PaymentDate, &s.GeneratedDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Slip{}, err
	}
	s.GeneratedDate = s.GeneratedDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
