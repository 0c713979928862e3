package profile

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/store"
)

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	_, err := s.Get(ctx, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	p, err := s.Merge(ctx, owner, Patch{Mobile: "555", Skills: Skills{"go"}}, now)
	require.NoError(t, err)
	assert.Equal(t, owner, p.Owner)

	p, err = s.Merge(ctx, owner, Patch{About: "hello", Certifications: []Certification{{Name: "CKA"}}}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "555", p.Mobile)
	assert.Equal(t, "hello", p.About)
	assert.Equal(t, []string{"go"}, p.Skills)
	assert.Equal(t, "CKA", p.Certifications[0].Name)
	assert.True(t, now.Add(time.Minute).Equal(p.UpdatedAt))

	got, err := s.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, p.About, got.About)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DAYFLOW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DAYFLOW_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := store.NewDB(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresStore(db.Client)
	require.NoError(t, s.EnsureIndexes(ctx))
	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("DAYFLOW_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DAYFLOW_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	m, err := store.NewMongo(ctx, uri, "dayflow_test_"+strings.ReplaceAll(uuid.NewString()[:8], "-", ""))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Database.Drop(ctx)
		_ = m.Close(ctx)
	})

	s := NewMongoStore(m.Database)
	require.NoError(t, s.EnsureIndexes(ctx))
	exerciseStore(t, s)
}
