package filestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/foomo/photogallery/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Directory selects a namespace for app-private data
type Directory string

const (
	// DirectoryNone addresses absolute paths and file:// URIs on the local filesystem
	DirectoryNone      Directory = ""
	DirectoryData      Directory = "DATA"
	DirectoryDocuments Directory = "DOCUMENTS"
	DirectoryCache     Directory = "CACHE"
)

var (
	ErrFileRead       = errors.New("file read failed")
	ErrFileWrite      = errors.New("file write failed")
	ErrNoDirectory    = errors.New("writing requires a directory")
	ErrInvalidEncoded = errors.New("data is not base64 encoded")
)

type (
	ReadOptions struct {
		Path      string
		Directory Directory
	}
	ReadResult struct {
		// Data base64 encoded file contents
		Data string
	}
	WriteOptions struct {
		Path string
		// Data base64 encoded file contents, optionally as a data URL
		Data      string
		Directory Directory
	}
	WriteResult struct {
		URI string
	}
	// FileStore reads and writes base64 encoded files
	FileStore interface {
		ReadFile(ctx context.Context, opts ReadOptions) (*ReadResult, error)
		WriteFile(ctx context.Context, opts WriteOptions) (*WriteResult, error)
	}
)

// Store implements FileStore on top of a storage backend.
type Store struct {
	l       *zap.Logger
	storage storage.Storage
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, s storage.Storage) *Store {
	return &Store{
		l:       l.Named("filestore"),
		storage: s,
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (s *Store) ReadFile(ctx context.Context, opts ReadOptions) (*ReadResult, error) {
	var (
		data []byte
		err  error
	)
	if opts.Directory == DirectoryNone {
		data, err = readLocal(opts.Path)
	} else {
		var key string
		if key, err = s.key(opts.Directory, opts.Path); err == nil {
			data, err = s.storage.Read(ctx, key)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileRead, opts.Path, err)
	}
	s.l.Debug("read file",
		zap.String("path", opts.Path),
		zap.String("directory", string(opts.Directory)),
		zap.Int("size", len(data)),
	)
	return &ReadResult{Data: base64.StdEncoding.EncodeToString(data)}, nil
}

func (s *Store) WriteFile(ctx context.Context, opts WriteOptions) (*WriteResult, error) {
	if opts.Directory == DirectoryNone {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileWrite, opts.Path, ErrNoDirectory)
	}
	data, err := Decode(opts.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileWrite, opts.Path, err)
	}
	key, err := s.key(opts.Directory, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileWrite, opts.Path, err)
	}
	if err := s.storage.Write(ctx, key, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileWrite, opts.Path, err)
	}
	uri := s.storage.URI(key)
	s.l.Debug("wrote file", zap.String("uri", uri), zap.Int("size", len(data)))
	return &WriteResult{URI: uri}, nil
}

// Decode accepts plain base64 or a base64 data URL.
func Decode(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		i := strings.Index(data, ",")
		if i < 0 || !strings.HasSuffix(data[:i], ";base64") {
			return nil, ErrInvalidEncoded
		}
		data = data[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEncoded, err.Error())
	}
	return b, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Store) key(dir Directory, p string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(p))[1:]
	if clean == "" {
		return "", errors.Errorf("invalid path %q", p)
	}
	return string(dir) + "/" + clean, nil
}

func readLocal(p string) ([]byte, error) {
	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		p = filepath.FromSlash(u.Path)
	}
	if !filepath.IsAbs(p) {
		return nil, errors.Errorf("path %q is not absolute", p)
	}
	return os.ReadFile(p)
}
