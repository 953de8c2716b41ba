package handler

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/foomo/photogallery/pkg/camera"
	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/foomo/photogallery/pkg/metrics"
	"github.com/foomo/photogallery/pkg/platform"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// FileRoot decides which local files may be served behind bridged URIs
	FileRoot interface {
		Contains(path string) bool
	}
	HTTP struct {
		l           *zap.Logger
		basePath    string
		fileRoot    FileRoot
		gallery     *gallery.Gallery
		eventBuffer int
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the http surface of a gallery
func NewHTTP(l *zap.Logger, g *gallery.Gallery, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:           l.Named("http"),
		basePath:    "/gallery",
		gallery:     g,
		eventBuffer: 1,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.basePath = strings.TrimSuffix(v, "/")
	}
}

// WithFileRoot enables serving bridged file URIs below the given root.
func WithFileRoot(v FileRoot) HTTPOption {
	return func(o *HTTP) {
		o.fileRoot = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	route, status := h.serve(w, r)

	result := "success"
	if status >= http.StatusBadRequest {
		result = "error"
	}
	metrics.ServiceRequestCounter.WithLabelValues(string(route), result).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result).Observe(time.Since(start).Seconds())
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) serve(w http.ResponseWriter, r *http.Request) (Route, int) {
	if p, ok := platform.FilePath(r.URL.Path); ok {
		return RouteFile, h.serveFile(w, r, p)
	}

	route := Route(strings.TrimPrefix(r.URL.Path, h.basePath+"/"))
	switch route {
	case RoutePhotos:
		if r.Method != http.MethodGet {
			return route, h.methodNotAllowed(w, r)
		}
		return route, h.encodeReply(w, r, h.gallery.Photos())
	case RouteCapture:
		if r.Method != http.MethodPost {
			return route, h.methodNotAllowed(w, r)
		}
		return route, h.capture(w, r)
	case RouteEvents:
		if r.Method != http.MethodGet {
			return route, h.methodNotAllowed(w, r)
		}
		return route, h.events(w, r)
	}

	http.NotFound(w, r)
	return "unknown", http.StatusNotFound
}

func (h *HTTP) capture(w http.ResponseWriter, r *http.Request) int {
	photo, err := h.gallery.Capture(r.Context())
	switch {
	case errors.Is(err, camera.ErrCaptureDeclined):
		httputils.ServerError(h.l, w, r, http.StatusConflict, err)
		return http.StatusConflict
	case errors.Is(err, gallery.ErrClosed):
		httputils.ServerError(h.l, w, r, http.StatusServiceUnavailable, err)
		return http.StatusServiceUnavailable
	case err != nil:
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return http.StatusInternalServerError
	}
	return h.encodeReply(w, r, photo)
}

// events streams the photo list as server-sent events, starting with the
// current list.
func (h *HTTP) events(w http.ResponseWriter, r *http.Request) int {
	rc := http.NewResponseController(w)

	updates := make(chan []gallery.Photo, h.eventBuffer)
	unsubscribe, err := h.gallery.Subscribe(func(photos []gallery.Photo) {
		// every update carries the full list, so only the latest one matters
		for {
			select {
			case updates <- photos:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return http.StatusInternalServerError
	}
	defer unsubscribe()

	metrics.NumSubscribersGauge.WithLabelValues().Inc()
	defer metrics.NumSubscribersGauge.WithLabelValues().Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	photos := h.gallery.Photos()
	for {
		if err := h.writeEvent(w, rc, photos); err != nil {
			h.l.Debug("closing event stream", zap.Error(err))
			return http.StatusOK
		}
		select {
		case <-r.Context().Done():
			return http.StatusOK
		case photos = <-updates:
		}
	}
}

func (h *HTTP) writeEvent(w http.ResponseWriter, rc *http.ResponseController, photos []gallery.Photo) error {
	data, err := json.Marshal(photos)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	if _, err := w.Write([]byte("event: photos\ndata: " + string(data) + "\n\n")); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *HTTP) serveFile(w http.ResponseWriter, r *http.Request, p string) int {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return h.methodNotAllowed(w, r)
	}
	local := filepath.FromSlash(p)
	if h.fileRoot == nil || !h.fileRoot.Contains(local) {
		http.NotFound(w, r)
		return http.StatusNotFound
	}
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	http.ServeFile(sw, r, local)
	return sw.status
}

func (h *HTTP) methodNotAllowed(w http.ResponseWriter, r *http.Request) int {
	httputils.ServerError(h.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	return http.StatusMethodNotAllowed
}

// encodeReply writes the reply wrapped in a json envelope
func (h *HTTP) encodeReply(w http.ResponseWriter, r *http.Request, reply interface{}) int {
	bytes, err := json.Marshal(map[string]interface{}{
		"reply": reply,
	})
	if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, errors.Wrap(err, "could not encode reply"))
		return http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bytes)
	return http.StatusOK
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
