package camera

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// File picks an existing image from the local filesystem, the way a photo
	// library picker would. Every capture is a fresh copy in the temp dir.
	File struct {
		l       *zap.Logger
		source  string
		tempDir string
		now     func() time.Time
	}
	FileOption func(*File)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewFile(l *zap.Logger, source string, opts ...FileOption) *File {
	inst := &File{
		l:       l.Named("camera.file"),
		source:  source,
		tempDir: os.TempDir(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func FileWithTempDir(v string) FileOption {
	return func(o *File) {
		o.tempDir = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (f *File) GetPhoto(ctx context.Context, opts Options) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(ErrCaptureDeclined, err.Error())
	}
	src, err := os.Open(f.source)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrCaptureDeclined, "no image at %s", f.source)
	} else if err != nil {
		return nil, errors.Wrap(ErrCaptureFailed, err.Error())
	}
	defer src.Close()

	target := tempImagePath(f.tempDir, f.now())
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Wrap(ErrCaptureFailed, err.Error())
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return nil, errors.Wrap(ErrCaptureFailed, err.Error())
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return nil, errors.Wrap(ErrCaptureFailed, err.Error())
	}

	return finish(f.l, target, opts)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func tempImagePath(dir string, t time.Time) string {
	return filepath.Join(dir, "capture-"+strconv.FormatInt(t.UnixNano(), 10)+".jpeg")
}

// finish applies the capture options to a captured file and describes it
func finish(l *zap.Logger, path string, opts Options) (*Image, error) {
	if opts.CorrectOrientation {
		rewritten, err := Normalize(path, opts.Quality)
		if err != nil {
			_ = os.Remove(path)
			return nil, errors.Wrap(ErrCaptureFailed, err.Error())
		}
		if rewritten {
			l.Debug("corrected orientation", zap.String("path", path))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, errors.Wrap(ErrCaptureFailed, err.Error())
	}
	l.Info("captured image", zap.String("path", abs))
	return &Image{
		Path:      abs,
		WebPath:   "file://" + filepath.ToSlash(abs),
		Format:    strings.TrimPrefix(filepath.Ext(abs), "."),
		Temporary: true,
	}, nil
}
