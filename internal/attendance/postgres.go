package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dayflow/internal/store"
)

const recordColumns = `id, owner, day, login_time, logout_time, status, total_hours, created_at, updated_at`

// PostgresStore persists attendance records in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open pgx-backed *sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureIndexes creates the table with its (owner, day) unique constraint.
func (r *PostgresStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_records (
			id          TEXT PRIMARY KEY,
			owner       TEXT NOT NULL,
			day         TEXT NOT NULL,
			login_time  TIMESTAMPTZ NOT NULL,
			logout_time TIMESTAMPTZ,
			status      TEXT NOT NULL DEFAULT 'Absent',
			total_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT attendance_owner_day_key UNIQUE (owner, day)
		);
		CREATE INDEX IF NOT EXISTS idx_attendance_owner_day_desc ON attendance_records (owner, day DESC);
	`)
	return err
}

// Insert writes a new record.
func (r *PostgresStore) Insert(ctx context.Context, rec Record) (Record, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, owner, day, login_time, logout_time, status, total_hours, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.ID, rec.Owner, rec.Day, rec.LoginTime, rec.LogoutTime, rec.Status, rec.TotalHours, rec.CreatedAt, rec.UpdatedAt)
	if store.IsUniqueViolation(err) {
		return Record{}, ErrDuplicate
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FindDay returns a single record by owner and day.
func (r *PostgresStore) FindDay(ctx context.Context, owner, day string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records WHERE owner = $1 AND day = $2
	`, owner, day)
	return scanRecord(row)
}

// Close sets the logout time on a still-open record.
func (r *PostgresStore) Close(ctx context.Context, id string, logout time.Time, hours float64) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET logout_time = $2, total_hours = $3, updated_at = $2
		WHERE id = $1 AND logout_time IS NULL
		RETURNING `+recordColumns, id, logout, hours)
	return scanRecord(row)
}

// ListRecent returns the owner's latest records.
func (r *PostgresStore) ListRecent(ctx context.Context, owner string, limit int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE owner = $1
		ORDER BY day DESC, id ASC
		LIMIT $2
	`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// CountBetween counts the owner's records in an inclusive day range.
func (r *PostgresStore) CountBetween(ctx context.Context, owner, fromDay, toDay string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records WHERE owner = $1 AND day >= $2 AND day <= $3
	`, owner, fromDay, toDay).Scan(&n)
	return n, err
}

// Reset removes every record.
func (r *PostgresStore) Reset(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Owner, &rec.Day, &rec.LoginTime, &rec.LogoutTime, &rec.Status, &rec.TotalHours, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec.LoginTime = rec.LoginTime.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if rec.LogoutTime != nil {
		t := rec.LogoutTime.UTC()
		rec.LogoutTime = &t
	}
	return rec, nil
}
