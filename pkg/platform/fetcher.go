package platform

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/foomo/photogallery/pkg/filestore"
	"github.com/pkg/errors"
)

// Fetcher retrieves the bytes behind a web path together with their mime type
type Fetcher interface {
	Fetch(ctx context.Context, webPath string) (data []byte, mimeType string, err error)
}

// HTTPFetcher fetches http(s), file and data web paths.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, webPath string) ([]byte, string, error) {
	u, err := url.Parse(webPath)
	if err != nil {
		return nil, "", errors.Wrap(err, "invalid web path")
	}
	switch u.Scheme {
	case "http", "https":
		return f.get(ctx, webPath)
	case "file":
		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		if err != nil {
			return nil, "", err
		}
		return data, http.DetectContentType(data), nil
	case "data":
		data, err := filestore.Decode(webPath)
		if err != nil {
			return nil, "", err
		}
		return data, mimeOfDataURL(webPath), nil
	}
	return nil, "", errors.Errorf("unsupported web path scheme %q", u.Scheme)
}

func (f *HTTPFetcher) get(ctx context.Context, webPath string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webPath, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create fetch request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to fetch image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Errorf("bad response code %q fetching %s", resp.Status, webPath)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read image")
	}
	mimeType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	if mimeType = strings.TrimSpace(mimeType); mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

func mimeOfDataURL(v string) string {
	meta := strings.TrimPrefix(v, "data:")
	if i := strings.IndexAny(meta, ";,"); i >= 0 {
		meta = meta[:i]
	}
	return meta
}
