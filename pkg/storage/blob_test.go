package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

func newTestBlob(t *testing.T, prefix string) *Blob {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })
	return NewBlobFromBucket(bucket, "mem://", prefix)
}

func TestBlob_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := newTestBlob(t, "")

	require.NoError(t, s.Write(ctx, "test-key", []byte("test-data")))

	data, err := s.Read(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("test-data"), data)
}

func TestBlob_WriteRead_WithPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestBlob(t, "my-prefix")

	require.NoError(t, s.Write(ctx, "test-key", []byte("test-data")))

	data, err := s.Read(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("test-data"), data)
	assert.Equal(t, "my-prefix/test-key", s.fullKey("test-key"))
}

func TestBlob_Read_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestBlob(t, "")

	_, err := s.Read(ctx, "nonexistent-key")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBlob_ListWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestBlob(t, "bucket-prefix/")

	for _, key := range []string{"prefix-a", "prefix-b", "other-key"} {
		require.NoError(t, s.Write(ctx, key, []byte(key)))
	}

	keys, err := s.List(ctx, "prefix-")
	require.NoError(t, err)
	// Keys should not include the bucket prefix
	assert.Equal(t, []string{"prefix-b", "prefix-a"}, keys)
}

func TestBlob_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestBlob(t, "")

	require.NoError(t, s.Write(ctx, "test-key", []byte("test-data")))
	require.NoError(t, s.Delete(ctx, "test-key"))

	_, err := s.Read(ctx, "test-key")
	assert.True(t, os.IsNotExist(err))

	// Delete should be idempotent - no error for non-existent key
	require.NoError(t, s.Delete(ctx, "test-key"))
}

func TestBlob_URI(t *testing.T) {
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	s := NewBlobFromBucket(bucket, "gs://photos?access_id=foo", "gallery")
	assert.Equal(t, "gs://photos/gallery/DATA/1.jpeg", s.URI("DATA/1.jpeg"))
}
