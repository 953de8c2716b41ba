package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/photogallery/pkg/camera"
	"github.com/foomo/photogallery/pkg/filestore"
	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/foomo/photogallery/pkg/kvstore"
	"github.com/foomo/photogallery/pkg/platform"
	"github.com/foomo/photogallery/pkg/storage"
	"github.com/foomo/photogallery/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// supportedBlobSchemes lists the URL schemes supported by blob storage
var supportedBlobSchemes = []string{"gs://", "s3://", "azblob://", "file://", "mem://"}

// components holds everything a command needs to run a gallery
type components struct {
	storage    storage.Storage
	filesystem *storage.Filesystem
	kv         kvstore.Store
	gallery    *gallery.Gallery
	closers    []func() error
}

func newComponents(ctx context.Context, v *viper.Viper, l *zap.Logger) (c *components, err error) {
	c = &components{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, c.Close())
		}
	}()

	kind, err := platform.ParseKind(platformFlag(v))
	if err != nil {
		return c, err
	}
	if platform.IsNativePlatform(kind) && !utils.IsValidURL(bridgeBaseURLFlag(v)) {
		return c, fmt.Errorf("invalid bridge base url: %q", bridgeBaseURLFlag(v))
	}

	if c.storage, err = createStorage(ctx, v, l); err != nil {
		return c, fmt.Errorf("failed to create storage: %w", err)
	}
	c.filesystem, _ = c.storage.(*storage.Filesystem)

	if c.kv, err = createKVStore(ctx, v, l, c.storage); err != nil {
		return c, multierr.Append(fmt.Errorf("failed to create kv store: %w", err), c.storage.Close())
	}
	c.closers = append(c.closers, c.kv.Close)
	if _, ok := c.kv.(*kvstore.History); !ok {
		// the history closes the storage it is built on
		c.closers = append(c.closers, c.storage.Close)
	}

	cam, err := createCamera(v, l)
	if err != nil {
		return c, fmt.Errorf("failed to create camera: %w", err)
	}

	files := filestore.New(l.Named("inst.filestore"), c.storage)
	fetcher := platform.NewHTTPFetcher(
		keelhttp.NewHTTPClient(
			keelhttp.HTTPClientWithTimeout(fetchTimeoutFlag(v)),
			keelhttp.HTTPClientWithTelemetry(),
		),
	)
	strategy, err := platform.New(l.Named("inst.platform"), kind, files, platform.NewBridge(bridgeBaseURLFlag(v)), fetcher)
	if err != nil {
		return c, err
	}

	cameraOptions := camera.DefaultOptions()
	cameraOptions.Quality = cameraQualityFlag(v)
	cameraOptions.CorrectOrientation = cameraCorrectOrientationFlag(v)

	c.gallery = gallery.New(l.Named("inst"), cam, strategy, c.kv,
		gallery.WithStorageKey(kvKeyFlag(v)),
		gallery.WithCameraOptions(cameraOptions),
		gallery.WithAcknowledgedWrites(acknowledgedWritesFlag(v)),
	)
	return c, nil
}

// Close flushes the gallery and releases the stores.
func (c *components) Close() error {
	if c.gallery != nil {
		c.gallery.Close()
	}
	var err error
	for _, closer := range c.closers {
		err = multierr.Append(err, closer())
	}
	c.closers = nil
	return err
}

// createStorage creates a storage backend based on the configuration
func createStorage(ctx context.Context, v *viper.Viper, l *zap.Logger) (storage.Storage, error) {
	storageType := storageTypeFlag(v)
	blobBucket := storageBlobBucketFlag(v)
	blobPrefix := storageBlobPrefixFlag(v)

	if storageType != "blob" && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob storage flags are set but storage-type is not 'blob'; blob config will be ignored",
			zap.String("storage-type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}

	l.Info("creating storage", zap.String("type", storageType))

	switch storageType {
	case "blob":
		if blobBucket == "" {
			return nil, fmt.Errorf("blob bucket URL is required when storage-type is 'blob' (supported schemes: %s)", strings.Join(supportedBlobSchemes, ", "))
		}
		if !isValidBlobScheme(blobBucket) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme in %q; supported schemes: %s", blobBucket, strings.Join(supportedBlobSchemes, ", "))
		}
		l.Info("using blob storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
			zap.String("provider", detectBlobProvider(blobBucket)),
		)
		return storage.NewBlob(ctx, blobBucket, blobPrefix)
	case "filesystem", "":
		dir := storageDirFlag(v)
		l.Info("using filesystem storage", zap.String("dir", dir))
		return storage.NewFilesystem(dir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: filesystem, blob)", storageType)
	}
}

func createKVStore(ctx context.Context, v *viper.Viper, l *zap.Logger, s storage.Storage) (kvstore.Store, error) {
	kvType := kvTypeFlag(v)
	l.Info("creating kv store", zap.String("type", kvType))

	switch kvType {
	case "history", "":
		return kvstore.NewHistory(l.Named("inst.kv"), s, kvstore.HistoryWithHistoryLimit(historyLimitFlag(v))), nil
	case "sqlite":
		return kvstore.NewSQLite(ctx, l.Named("inst.kv"), sqlitePathFlag(v))
	case "postgres":
		if postgresURLFlag(v) == "" {
			return nil, fmt.Errorf("postgres url is required when kv-type is 'postgres'")
		}
		return kvstore.NewPostgres(ctx, l.Named("inst.kv"), postgresURLFlag(v))
	case "memory":
		l.Warn("photo list is not persisted across restarts")
		return kvstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown kv type: %s (supported: history, sqlite, postgres, memory)", kvType)
	}
}

func createCamera(v *viper.Viper, l *zap.Logger) (camera.Camera, error) {
	tempDir := cameraTempDirFlag(v)

	switch cameraTypeFlag(v) {
	case "file", "":
		source := cameraSourceFlag(v)
		if source == "" {
			return nil, fmt.Errorf("camera-source is required for the file camera")
		}
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
		var opts []camera.FileOption
		if tempDir != "" {
			opts = append(opts, camera.FileWithTempDir(tempDir))
		}
		return camera.NewFile(l.Named("inst"), source, opts...), nil
	case "exec":
		var opts []camera.ExecOption
		if tempDir != "" {
			opts = append(opts, camera.ExecWithTempDir(tempDir))
		}
		return camera.NewExec(l.Named("inst"), strings.Fields(cameraCommandFlag(v)), opts...)
	default:
		return nil, fmt.Errorf("unknown camera type: %s (supported: file, exec)", cameraTypeFlag(v))
	}
}

// isValidBlobScheme checks if the bucket URL has a supported scheme
func isValidBlobScheme(bucketURL string) bool {
	for _, scheme := range supportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}

// detectBlobProvider returns a human-readable provider name from the URL scheme
func detectBlobProvider(bucketURL string) string {
	switch {
	case strings.HasPrefix(bucketURL, "gs://"):
		return "Google Cloud Storage"
	case strings.HasPrefix(bucketURL, "s3://"):
		return "AWS S3"
	case strings.HasPrefix(bucketURL, "azblob://"):
		return "Azure Blob Storage"
	case strings.HasPrefix(bucketURL, "file://"):
		return "Local Directory"
	case strings.HasPrefix(bucketURL, "mem://"):
		return "In Memory"
	default:
		return "unknown"
	}
}
