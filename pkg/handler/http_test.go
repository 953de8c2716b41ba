package handler

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foomo/photogallery/pkg/camera"
	"github.com/foomo/photogallery/pkg/filestore"
	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/foomo/photogallery/pkg/kvstore"
	"github.com/foomo/photogallery/pkg/platform"
	"github.com/foomo/photogallery/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/nettest"
)

type testServer struct {
	url string
	fs  *storage.Filesystem
	g   *gallery.Gallery
}

func newTestServer(t *testing.T, cam camera.Camera) *testServer {
	t.Helper()
	l := zaptest.NewLogger(t)

	fs, err := storage.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	ln, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	strategy := platform.NewNative(l, filestore.New(l, fs), platform.NewBridge(base))
	g := gallery.New(l, cam, strategy, kvstore.NewMemory())
	require.NoError(t, g.Load(context.Background()))

	server := &http.Server{
		Handler:           NewHTTP(l, g, WithBasePath("/gallery/"), WithFileRoot(fs)),
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = server.Close()
		g.Close()
	})

	return &testServer{url: base, fs: fs, g: g}
}

func localCamera(t *testing.T) camera.Camera {
	t.Helper()
	p := filepath.Join(t.TempDir(), "img.jpg")
	require.NoError(t, os.WriteFile(p, []byte("jpeg"), 0600))
	return camera.Func(func(context.Context, camera.Options) (*camera.Image, error) {
		return &camera.Image{Path: p, WebPath: "file://" + filepath.ToSlash(p), Format: "jpeg"}, nil
	})
}

func decodeReply[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var envelope struct {
		Reply T `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Reply
}

func TestHTTP_Photos(t *testing.T) {
	s := newTestServer(t, localCamera(t))

	resp, err := http.Get(s.url + "/gallery/photos")
	require.NoError(t, err)
	photos := decodeReply[[]gallery.Photo](t, resp)
	assert.NotNil(t, photos)
	assert.Empty(t, photos)
}

func TestHTTP_Capture(t *testing.T) {
	s := newTestServer(t, localCamera(t))

	resp, err := http.Post(s.url+"/gallery/capture", "application/json", nil)
	require.NoError(t, err)
	photo := decodeReply[gallery.Photo](t, resp)
	assert.True(t, strings.HasPrefix(photo.Filepath, "file://"))
	assert.True(t, strings.HasPrefix(photo.WebviewPath, s.url+platform.FilePathPrefix+"/"))

	resp, err = http.Get(s.url + "/gallery/photos")
	require.NoError(t, err)
	photos := decodeReply[[]gallery.Photo](t, resp)
	assert.Equal(t, []gallery.Photo{photo}, photos)

	// the viewable path is served by the same handler
	resp, err = http.Get(photo.WebviewPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(body))
}

func TestHTTP_Capture_Errors(t *testing.T) {
	for name, tc := range map[string]struct {
		err    error
		status int
	}{
		"declined": {err: camera.ErrCaptureDeclined, status: http.StatusConflict},
		"failed":   {err: camera.ErrCaptureFailed, status: http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t, camera.Func(func(context.Context, camera.Options) (*camera.Image, error) {
				return nil, tc.err
			}))

			resp, err := http.Post(s.url+"/gallery/capture", "application/json", nil)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Empty(t, s.g.Photos())
		})
	}
}

func TestHTTP_Capture_Closed(t *testing.T) {
	s := newTestServer(t, localCamera(t))
	s.g.Close()

	resp, err := http.Post(s.url+"/gallery/capture", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHTTP_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, localCamera(t))

	resp, err := http.Get(s.url + "/gallery/capture")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(s.url+"/gallery/photos", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTP_NotFound(t *testing.T) {
	s := newTestServer(t, localCamera(t))

	for _, p := range []string{"/gallery/unknown", "/photos", platform.FilePathPrefix + "/etc/hosts"} {
		resp, err := http.Get(s.url + p)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, p)
	}
}

func TestHTTP_Events(t *testing.T) {
	s := newTestServer(t, localCamera(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"/gallery/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	next := func() []gallery.Photo {
		for {
			line, err := events.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var photos []gallery.Photo
				require.NoError(t, json.Unmarshal([]byte(data), &photos))
				return photos
			}
		}
	}

	assert.Empty(t, next())

	photo, err := s.g.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, []gallery.Photo{*photo}, next())
}
