package kvstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/foomo/photogallery/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	HistoryKeyPrefix  = "kv/"
	HistoryKeySuffix  = ".json"
	historyCurrent    = "current"
	historyTimeFormat = "20060102T150405.000000000Z"
)

type (
	// History stores every key as a current value plus a bounded number of
	// timestamped backups on a storage backend.
	History struct {
		l            *zap.Logger
		storage      storage.Storage
		historyLimit int
		now          func() time.Time
		mu           sync.RWMutex
	}
	HistoryOption func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func HistoryWithHistoryLimit(v int) HistoryOption {
	return func(o *History) {
		o.historyLimit = v
	}
}

func HistoryWithClock(v func() time.Time) HistoryOption {
	return func(o *History) {
		o.now = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewHistory(l *zap.Logger, s storage.Storage, opts ...HistoryOption) *History {
	inst := &History{
		l:            l.Named("history"),
		storage:      s,
		historyLimit: 2,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Set writes the value as both a backup and the current value.
func (h *History) Set(ctx context.Context, key, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data := []byte(value)
	if h.historyLimit > 0 {
		backupKey := historyPrefix(key) + h.now().UTC().Format(historyTimeFormat) + HistoryKeySuffix
		if err := h.storage.Write(ctx, backupKey, data); err != nil {
			return unavailable("write backup", key, err)
		}
		h.l.Debug("wrote backup", zap.String("backup", backupKey))
	}

	if err := h.storage.Write(ctx, currentKey(key), data); err != nil {
		return unavailable("write current", key, err)
	}

	if err := h.cleanup(ctx, key); err != nil {
		return unavailable("cleanup", key, errors.Wrap(err, "failed to clean up history"))
	}

	return nil
}

// Get reads the current value.
func (h *History) Get(ctx context.Context, key string) (string, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := h.storage.Read(ctx, currentKey(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, unavailable("read", key, err)
	}
	return string(data), true, nil
}

// Backups returns the backup keys of key, newest first.
func (h *History) Backups(ctx context.Context, key string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.getHistory(ctx, key)
}

// Close releases resources held by the history storage.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.storage != nil {
		return h.storage.Close()
	}
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func historyPrefix(key string) string {
	return HistoryKeyPrefix + key + "-"
}

func currentKey(key string) string {
	return historyPrefix(key) + historyCurrent + HistoryKeySuffix
}

func (h *History) getHistory(ctx context.Context, key string) (files []string, err error) {
	keys, err := h.storage.List(ctx, historyPrefix(key))
	if err != nil {
		return nil, err
	}

	prefix := historyPrefix(key)
	for _, k := range keys {
		stamp := strings.TrimPrefix(k, prefix)
		if strings.HasSuffix(stamp, HistoryKeySuffix) &&
			len(strings.TrimSuffix(stamp, HistoryKeySuffix)) == len(historyTimeFormat) {
			files = append(files, k)
		}
	}
	return files, nil
}

func (h *History) cleanup(ctx context.Context, key string) error {
	files, err := h.getFilesForCleanup(ctx, key, h.historyLimit)
	if err != nil {
		return err
	}

	for _, f := range files {
		h.l.Debug("removing outdated backup", zap.String("file", f))
		if err := h.storage.Delete(ctx, f); err != nil {
			return fmt.Errorf("could not remove file %s: %w", f, err)
		}
	}

	return nil
}

func (h *History) getFilesForCleanup(ctx context.Context, key string, historyVersions int) (files []string, err error) {
	contentFiles, err := h.getHistory(ctx, key)
	if err != nil {
		return nil, errors.New("could not generate file cleanup list: " + err.Error())
	}

	if len(contentFiles) > historyVersions {
		files = append(files, contentFiles[historyVersions:]...)
	}
	return files, nil
}
