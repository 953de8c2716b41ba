package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystem_WriteRead(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "test-key", []byte("test-data")))

	data, err := s.Read(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("test-data"), data)
}

func TestFilesystem_Write_Overwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "test-key", []byte("original")))
	require.NoError(t, s.Write(ctx, "test-key", []byte("updated")))

	data, err := s.Read(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), data)
}

func TestFilesystem_Write_Nested(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "DATA/1700000000000.jpeg", []byte("jpeg")))

	data, err := os.ReadFile(filepath.Join(s.Root(), "DATA", "1700000000000.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestFilesystem_Read_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(ctx, "nonexistent-key")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystem_InvalidKey(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/../../escape", "."} {
		err := s.Write(ctx, key, []byte("x"))
		require.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFilesystem_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"prefix-a", "prefix-b", "prefix-c", "other-key"} {
		require.NoError(t, s.Write(ctx, key, []byte(key)))
	}

	keys, err := s.List(ctx, "prefix-")
	require.NoError(t, err)
	assert.Equal(t, []string{"prefix-c", "prefix-b", "prefix-a"}, keys)
}

func TestFilesystem_List_Directory(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "kv/photos-1", []byte("1")))
	require.NoError(t, s.Write(ctx, "kv/photos-2", []byte("2")))
	require.NoError(t, s.Write(ctx, "photos-3", []byte("3")))

	keys, err := s.List(ctx, "kv/photos-")
	require.NoError(t, err)
	assert.Equal(t, []string{"kv/photos-2", "kv/photos-1"}, keys)

	keys, err = s.List(ctx, "missing/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFilesystem_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "test-key", []byte("test-data")))
	require.NoError(t, s.Delete(ctx, "test-key"))

	_, err = s.Read(ctx, "test-key")
	assert.True(t, os.IsNotExist(err))

	// idempotent
	require.NoError(t, s.Delete(ctx, "test-key"))
}

func TestFilesystem_URI(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	uri := s.URI("DATA/1.jpeg")
	assert.True(t, strings.HasPrefix(uri, "file:///"), uri)
	assert.True(t, strings.HasSuffix(uri, "/DATA/1.jpeg"), uri)
	assert.True(t, s.Contains(strings.TrimPrefix(uri, "file://")))
	assert.False(t, s.Contains(filepath.Dir(s.Root())))
}

func TestFilesystem_ConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Write(ctx, "concurrent-key", []byte("data"))
			_, _ = s.Read(ctx, "concurrent-key")
			_, _ = s.List(ctx, "concurrent-")
		}()
	}
	wg.Wait()
}
