package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testStore runs the shared Store contract against a backend.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "photos")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "photos", `[{"filepath":"a.jpeg"}]`))
	v, ok, err := s.Get(ctx, "photos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"filepath":"a.jpeg"}]`, v)

	require.NoError(t, s.Set(ctx, "photos", `[]`))
	v, ok, err = s.Get(ctx, "photos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Set(ctx, "other", ""))
	v, ok, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	require.NoError(t, s.Close())
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(context.Background(), zaptest.NewLogger(t), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	testStore(t, s)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := NewSQLite(ctx, zaptest.NewLogger(t), path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "photos", "persisted"))
	require.NoError(t, s.Close())

	s, err = NewSQLite(ctx, zaptest.NewLogger(t), path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "photos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestSQLite_Closed(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, zaptest.NewLogger(t), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Set(ctx, "photos", "[]")
	require.ErrorIs(t, err, ErrStorageUnavailable)
	_, _, err = s.Get(ctx, "photos")
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("PHOTOGALLERY_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("PHOTOGALLERY_TEST_POSTGRES_URL not set")
	}
	s, err := NewPostgres(context.Background(), zaptest.NewLogger(t), url)
	require.NoError(t, err)
	testStore(t, s)
}
