package leave

import (
	"context"
	"database/sql"
	"errors"
)

const requestColumns = `id, owner, leave_type, start_date, end_date, reason, status, applied_date`

// PostgresStore persists leave requests in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open *sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leave_requests (
			id           TEXT PRIMARY KEY,
			owner        TEXT NOT NULL,
			leave_type   TEXT NOT NULL,
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			reason       TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'Pending',
			applied_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_leave_owner_applied ON leave_requests (owner, applied_date DESC);
	`)
	return err
}

func (r *PostgresStore) Insert(ctx context.Context, req Request) (Request, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, req.ID, req.Owner, req.LeaveType, req.StartDate, req.EndDate, req.Reason, req.Status, req.AppliedDate)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

func (r *PostgresStore) Get(ctx context.Context, id string) (Request, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (r *PostgresStore) ListByOwner(ctx context.Context, owner string) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM leave_requests
		WHERE owner = $1
		ORDER BY applied_date DESC, id ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, req)
	}
	return res, rows.Err()
}

func scanRequest(row interface{ Scan(dest ...any) error }) (Request, error) {
	var req Request
	if err := row.Scan(&req.ID, &req.Owner, &req.LeaveType, &req.StartDate, &req.EndDate, &req.Reason, &req.Status, &req.AppliedDate); err != nil {
		return Request{}, err
	}
	req.AppliedDate = req.AppliedDate.UTC()
	return req, nil
}
