package platform

import (
	"context"
	"encoding/base64"

	"github.com/foomo/photogallery/pkg/camera"
	"github.com/foomo/photogallery/pkg/filestore"
	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoWebPath the camera result carries no web path
var ErrNoWebPath = errors.New("image has no web path")

// Web stores captures on platforms without direct file system access.
type Web struct {
	l       *zap.Logger
	files   filestore.FileStore
	fetcher Fetcher
}

func NewWeb(l *zap.Logger, files filestore.FileStore, fetcher Fetcher) *Web {
	return &Web{
		l:       l.Named("web"),
		files:   files,
		fetcher: fetcher,
	}
}

func (w *Web) Native() bool {
	return false
}

// SavePicture fetches the image from its web path and stores it as a data
// URL. The web path itself stays the viewable reference.
func (w *Web) SavePicture(ctx context.Context, img *camera.Image, fileName string) (*gallery.Photo, error) {
	if img == nil || img.WebPath == "" {
		return nil, ErrNoWebPath
	}
	data, mimeType, err := w.fetcher.Fetch(ctx, img.WebPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", img.WebPath)
	}

	if _, err := w.files.WriteFile(ctx, filestore.WriteOptions{
		Path:      fileName,
		Data:      DataURL(mimeType, data),
		Directory: filestore.DirectoryData,
	}); err != nil {
		return nil, err
	}

	w.l.Debug("saved picture", zap.String("source", img.WebPath), zap.String("file", fileName))
	return &gallery.Photo{
		Filepath:    fileName,
		WebviewPath: img.WebPath,
	}, nil
}

// Rehydrate reads every photo from the data directory and replaces its
// viewable path with a data URL. It stops at the first failure.
func (w *Web) Rehydrate(ctx context.Context, photos []gallery.Photo) error {
	for i := range photos {
		file, err := w.files.ReadFile(ctx, filestore.ReadOptions{
			Path:      photos[i].Filepath,
			Directory: filestore.DirectoryData,
		})
		if err != nil {
			return err
		}
		photos[i].WebviewPath = gallery.JPEGDataURLPrefix + file.Data
	}
	return nil
}

// Persistable strips the viewable paths, they are recomputed on load.
func (w *Web) Persistable(photos []gallery.Photo) []gallery.Photo {
	out := make([]gallery.Photo, len(photos))
	for i, p := range photos {
		out[i] = gallery.Photo{Filepath: p.Filepath}
	}
	return out
}

// DataURL encodes data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
