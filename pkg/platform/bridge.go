package platform

import (
	"net/url"
	"strings"
)

// FilePathPrefix path under which bridged file URIs are served
const FilePathPrefix = "/_app_file_"

// URIBridge converts a native file URI into one usable by the presentation layer
type URIBridge interface {
	ConvertFileSrc(uri string) string
}

// Bridge rewrites file:// URIs to http URIs below a base URL.
type Bridge struct {
	base string
}

// NewBridge returns a bridge for the given base URL, e.g. http://localhost:8080
func NewBridge(base string) *Bridge {
	return &Bridge{base: strings.TrimSuffix(base, "/")}
}

func (b *Bridge) ConvertFileSrc(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return b.base + FilePathPrefix + (&url.URL{Path: u.Path}).EscapedPath()
}

// FilePath returns the local path a bridged request path points to.
func FilePath(requestPath string) (string, bool) {
	if !strings.HasPrefix(requestPath, FilePathPrefix+"/") {
		return "", false
	}
	return strings.TrimPrefix(requestPath, FilePathPrefix), true
}
