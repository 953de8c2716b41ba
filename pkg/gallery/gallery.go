package gallery

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/photogallery/pkg/camera"
	"github.com/foomo/photogallery/pkg/kvstore"
	"github.com/foomo/photogallery/pkg/metrics"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	messagebus "github.com/vardius/message-bus"
	"go.uber.org/zap"
)

const (
	// DefaultStorageKey key the photo list is persisted under
	DefaultStorageKey = "photos"
	// TopicPhotosChanged bus topic carrying the photo list after every change
	TopicPhotosChanged = "gallery.photos.changed"
	// FileExtension extension of stored photos
	FileExtension = ".jpeg"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrClosed the gallery no longer accepts captures
var ErrClosed = errors.New("gallery closed")

type (
	// Gallery owns the ordered photo list, most recent first.
	Gallery struct {
		l             *zap.Logger
		camera        camera.Camera
		strategy      Strategy
		kv            kvstore.Store
		bus           messagebus.MessageBus
		storageKey    string
		cameraOptions camera.Options
		acknowledged  bool
		now           func() time.Time
		onLoaded      func()
		loaded        *atomic.Bool
		photos        []Photo
		photosLock    sync.RWMutex
		persistLock   sync.Mutex
		pending       sync.WaitGroup
		// closed guards pending.Add against a concurrent Close
		closed     bool
		closedLock sync.Mutex
		// lastMillis last timestamp handed out as a file name
		lastMillis int64
		nameLock   sync.Mutex
	}
	Option func(*Gallery)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, cam camera.Camera, strategy Strategy, kv kvstore.Store, opts ...Option) *Gallery {
	inst := &Gallery{
		l:             l.Named("gallery"),
		camera:        cam,
		strategy:      strategy,
		kv:            kv,
		storageKey:    DefaultStorageKey,
		cameraOptions: camera.DefaultOptions(),
		now:           time.Now,
		loaded:        &atomic.Bool{},
		photos:        []Photo{},
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.bus == nil {
		inst.bus = messagebus.New(64)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithStorageKey(v string) Option {
	return func(o *Gallery) {
		o.storageKey = v
	}
}

func WithCameraOptions(v camera.Options) Option {
	return func(o *Gallery) {
		o.cameraOptions = v
	}
}

// WithAcknowledgedWrites makes Capture wait for the photo list to be
// persisted and return the write error.
func WithAcknowledgedWrites(v bool) Option {
	return func(o *Gallery) {
		o.acknowledged = v
	}
}

func WithClock(v func() time.Time) Option {
	return func(o *Gallery) {
		o.now = v
	}
}

func WithBus(v messagebus.MessageBus) Option {
	return func(o *Gallery) {
		o.bus = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (g *Gallery) Loaded() bool {
	return g.loaded.Load()
}

// Photos returns a copy of the current photo list.
func (g *Gallery) Photos() []Photo {
	g.photosLock.RLock()
	defer g.photosLock.RUnlock()
	return clonePhotos(g.photos)
}

func (g *Gallery) Native() bool {
	return g.strategy.Native()
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (g *Gallery) OnLoaded(fn func()) {
	g.onLoaded = fn
}

// Subscribe registers fn to receive a copy of the photo list after every
// change. Calls happen on a dedicated goroutine per subscriber.
func (g *Gallery) Subscribe(fn func(photos []Photo)) (unsubscribe func(), err error) {
	if err := g.bus.Subscribe(TopicPhotosChanged, fn); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe")
	}
	return func() {
		if err := g.bus.Unsubscribe(TopicPhotosChanged, fn); err != nil {
			g.l.Debug("failed to unsubscribe", zap.Error(err))
		}
	}, nil
}

// Capture takes a photo, stores it and prepends it to the list. The list is
// left unchanged if the camera or the storage fails.
func (g *Gallery) Capture(ctx context.Context) (*Photo, error) {
	if g.isClosed() {
		return nil, ErrClosed
	}
	start := time.Now()
	l := g.l.With(zap.String("run_id", uuid.New().String()))

	l.Debug("requesting photo",
		zap.String("source", string(g.cameraOptions.Source)),
		zap.Int("quality", g.cameraOptions.Quality),
	)
	img, err := g.camera.GetPhoto(ctx, g.cameraOptions)
	if err != nil {
		l.Info("capture failed", zap.Error(err))
		metrics.CapturesFailedCounter.WithLabelValues(failureReason(err)).Inc()
		return nil, errors.Wrap(err, "failed to capture photo")
	}

	fileName := g.nextFileName()
	photo, err := g.strategy.SavePicture(ctx, img, fileName)
	if err := camera.Discard(img); err != nil {
		l.Warn("failed to discard captured image", zap.String("path", img.Path), zap.Error(err))
	}
	if err != nil {
		l.Error("failed to save picture", zap.String("file", fileName), zap.Error(err))
		metrics.CapturesFailedCounter.WithLabelValues("save").Inc()
		return nil, errors.Wrap(err, "failed to save picture")
	}

	photos := g.prepend(*photo)
	l.Info("photo added", zap.String("filepath", photo.Filepath), zap.Int("photos", len(photos)))
	metrics.CapturesCompletedCounter.WithLabelValues(g.platformLabel()).Inc()
	metrics.CaptureDuration.WithLabelValues(g.platformLabel()).Observe(time.Since(start).Seconds())

	return photo, g.changed(ctx, photos)
}

// Load replaces the photo list with the persisted one. An absent list loads
// as empty. Viewable paths are rehydrated by the platform strategy; the list
// stays untouched if that fails.
func (g *Gallery) Load(ctx context.Context) error {
	start := time.Now()

	value, ok, err := g.kv.Get(ctx, g.storageKey)
	if err != nil {
		return errors.Wrap(err, "failed to read photo list")
	}

	photos := []Photo{}
	if ok && value != "" {
		if err := json.Unmarshal([]byte(value), &photos); err != nil {
			return errors.Wrap(err, "failed to deserialize photo list")
		}
		if photos == nil {
			photos = []Photo{}
		}
	}

	if err := g.strategy.Rehydrate(ctx, photos); err != nil {
		return errors.Wrap(err, "failed to rehydrate photos")
	}

	g.setPhotos(photos)
	g.bus.Publish(TopicPhotosChanged, clonePhotos(photos))
	metrics.LoadDuration.WithLabelValues(g.platformLabel()).Observe(time.Since(start).Seconds())

	if !g.loaded.Swap(true) && g.onLoaded != nil {
		g.onLoaded()
	}
	g.l.Info("loaded photos", zap.Int("photos", len(photos)), zap.Bool("stored", ok))
	return nil
}

// Start loads the persisted list and blocks until ctx is done, closing the
// gallery before it returns.
func (g *Gallery) Start(ctx context.Context) error {
	l := g.l.Named("start")

	l.Debug("loading photo list")
	if err := g.Load(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	l.Debug("closing", zap.Error(ctx.Err()))
	g.Close()
	return nil
}

// Flush waits for fire-and-forget writes in flight. It must not race with
// Capture; use Close when captures may still be running.
func (g *Gallery) Flush() {
	g.pending.Wait()
}

// Close rejects further captures, waits for pending writes and drops all
// subscribers. Captures already past the check persist synchronously.
func (g *Gallery) Close() {
	g.closedLock.Lock()
	if g.closed {
		g.closedLock.Unlock()
		return
	}
	g.closed = true
	g.closedLock.Unlock()

	g.pending.Wait()
	g.bus.Close(TopicPhotosChanged)
}

// FileName derives the stored file name from the capture time.
func FileName(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + FileExtension
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (g *Gallery) prepend(photo Photo) []Photo {
	g.photosLock.Lock()
	defer g.photosLock.Unlock()
	photos := make([]Photo, 0, len(g.photos)+1)
	photos = append(photos, photo)
	photos = append(photos, g.photos...)
	g.photos = photos
	return clonePhotos(photos)
}

func (g *Gallery) setPhotos(photos []Photo) {
	g.photosLock.Lock()
	defer g.photosLock.Unlock()
	g.photos = photos
}

// changed notifies subscribers and persists the list
func (g *Gallery) changed(ctx context.Context, photos []Photo) error {
	g.bus.Publish(TopicPhotosChanged, photos)

	if g.acknowledged {
		return g.persist(ctx)
	}

	g.closedLock.Lock()
	if g.closed {
		g.closedLock.Unlock()
		return g.persist(ctx)
	}
	g.pending.Add(1)
	g.closedLock.Unlock()

	go func() {
		defer g.pending.Done()
		if err := g.persist(context.WithoutCancel(ctx)); err != nil {
			g.l.Error("failed to persist photo list", zap.Error(err))
		}
	}()
	return nil
}

// persist writes the latest list, so that the last write always wins
func (g *Gallery) persist(ctx context.Context) error {
	g.persistLock.Lock()
	defer g.persistLock.Unlock()

	data, err := json.Marshal(g.strategy.Persistable(g.Photos()))
	if err != nil {
		metrics.PersistFailedCounter.WithLabelValues().Inc()
		return errors.Wrap(err, "failed to serialize photo list")
	}
	if err := g.kv.Set(ctx, g.storageKey, string(data)); err != nil {
		metrics.PersistFailedCounter.WithLabelValues().Inc()
		return errors.Wrap(err, "failed to persist photo list")
	}
	g.l.Debug("persisted photo list", zap.String("key", g.storageKey), zap.Int("size", len(data)))
	return nil
}

func (g *Gallery) isClosed() bool {
	g.closedLock.Lock()
	defer g.closedLock.Unlock()
	return g.closed
}

// nextFileName derives a file name from the clock that no earlier capture
// of this gallery has used.
func (g *Gallery) nextFileName() string {
	g.nameLock.Lock()
	defer g.nameLock.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.lastMillis {
		ms = g.lastMillis + 1
	}
	g.lastMillis = ms
	return FileName(time.UnixMilli(ms))
}

func (g *Gallery) platformLabel() string {
	if g.strategy.Native() {
		return "native"
	}
	return "web"
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, camera.ErrCaptureDeclined):
		return "declined"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "failed"
}

func clonePhotos(photos []Photo) []Photo {
	out := make([]Photo, len(photos))
	copy(out, photos)
	return out
}
