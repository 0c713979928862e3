package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PostgresStore keeps each profile as a JSONB document keyed by owner.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			owner      TEXT PRIMARY KEY,
			doc        JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (r *PostgresStore) Get(ctx context.Context, owner string) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT doc, updated_at FROM profiles WHERE owner = $1`, owner)
	p, err := scanProfile(row, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// Merge upserts the patch with jsonb concatenation, so concurrent patches
// touching different fields do not overwrite each other.
func (r *PostgresStore) Merge(ctx context.Context, owner string, patch Patch, now time.Time) (Profile, error) {
	doc, err := json.Marshal(patch.Fields())
	if err != nil {
		return Profile{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (owner, doc, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (owner) DO UPDATE
		SET doc = profiles.doc || EXCLUDED.doc, updated_at = EXCLUDED.updated_at
		RETURNING doc, updated_at
	`, owner, string(doc), now)
	return scanProfile(row, owner)
}

func scanProfile(row *sql.Row, owner string) (Profile, error) {
	var (
		raw     []byte
		updated time.Time
	)
	if err := row.Scan(&raw, &updated); err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, err
	}
	p.Owner = owner
	p.UpdatedAt = updated.UTC()
	return p, nil
}
