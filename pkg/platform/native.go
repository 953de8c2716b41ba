package platform

import (
	"context"

	"github.com/foomo/photogallery/pkg/camera"
	"github.com/foomo/photogallery/pkg/filestore"
	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoImagePath the camera result carries no local path
var ErrNoImagePath = errors.New("image has no local path")

// Native stores captures on platforms with direct file system access.
type Native struct {
	l      *zap.Logger
	files  filestore.FileStore
	bridge URIBridge
}

func NewNative(l *zap.Logger, files filestore.FileStore, bridge URIBridge) *Native {
	return &Native{
		l:      l.Named("native"),
		files:  files,
		bridge: bridge,
	}
}

func (n *Native) Native() bool {
	return true
}

// SavePicture copies the already local file into the data directory. The
// record points at the written file's URI.
func (n *Native) SavePicture(ctx context.Context, img *camera.Image, fileName string) (*gallery.Photo, error) {
	if img == nil || img.Path == "" {
		return nil, ErrNoImagePath
	}
	file, err := n.files.ReadFile(ctx, filestore.ReadOptions{
		Path: img.Path,
	})
	if err != nil {
		return nil, err
	}

	saved, err := n.files.WriteFile(ctx, filestore.WriteOptions{
		Path:      fileName,
		Data:      file.Data,
		Directory: filestore.DirectoryData,
	})
	if err != nil {
		return nil, err
	}

	n.l.Debug("saved picture", zap.String("source", img.Path), zap.String("uri", saved.URI))
	return &gallery.Photo{
		Filepath:    saved.URI,
		WebviewPath: n.bridge.ConvertFileSrc(saved.URI),
	}, nil
}

// Rehydrate is a no-op: native rendering resolves the file path directly.
func (n *Native) Rehydrate(context.Context, []gallery.Photo) error {
	return nil
}

func (n *Native) Persistable(photos []gallery.Photo) []gallery.Photo {
	return photos
}
