package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Drivers for the supported bucket URL schemes
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Blob implements Storage using gocloud.dev/blob.
// This supports GCS, S3, Azure, and other cloud storage providers.
type Blob struct {
	bucket    *blob.Bucket
	bucketURL string
	prefix    string
}

// NewBlob creates a new blob-backed storage.
// bucketURL should be in the format "gs://bucket-name" for GCS.
// prefix is an optional path prefix for all keys.
func NewBlob(ctx context.Context, bucketURL, prefix string) (*Blob, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewBlobFromBucket(bucket, bucketURL, prefix), nil
}

// NewBlobFromBucket creates a new blob-backed storage from an existing bucket.
// This is useful for testing with memblob.
func NewBlobFromBucket(bucket *blob.Bucket, bucketURL, prefix string) *Blob {
	return &Blob{
		bucket:    bucket,
		bucketURL: bucketLocation(bucketURL),
		prefix:    normalizePrefix(prefix),
	}
}

func (b *Blob) fullKey(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + key
}

func (b *Blob) Write(ctx context.Context, key string, data []byte) error {
	return b.bucket.WriteAll(ctx, b.fullKey(key), data, nil)
}

func (b *Blob) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := b.bucket.ReadAll(ctx, b.fullKey(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	return data, nil
}

func (b *Blob) List(ctx context.Context, prefix string) ([]string, error) {
	iter := b.bucket.List(&blob.ListOptions{
		Prefix: b.fullKey(prefix),
	})

	var keys []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		key := obj.Key
		if b.prefix != "" {
			if !strings.HasPrefix(key, b.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, b.prefix)
		}
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (b *Blob) Delete(ctx context.Context, key string) error {
	err := b.bucket.Delete(ctx, b.fullKey(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		return err
	}
	return nil
}

// URI returns the bucket location joined with the full object key.
func (b *Blob) URI(key string) string {
	return b.bucketURL + "/" + b.fullKey(key)
}

func (b *Blob) Close() error {
	return b.bucket.Close()
}

// normalizePrefix ensures a trailing slash if non-empty
func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// bucketLocation strips driver query parameters from a bucket URL
func bucketLocation(bucketURL string) string {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return strings.TrimSuffix(bucketURL, "/")
	}
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/")
}
