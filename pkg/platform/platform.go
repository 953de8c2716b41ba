package platform

import (
	"github.com/foomo/photogallery/pkg/filestore"
	"github.com/foomo/photogallery/pkg/gallery"
	"go.uber.org/zap"
)

// New selects the strategy for the configured platform kind.
func New(l *zap.Logger, kind Kind, files filestore.FileStore, bridge URIBridge, fetcher Fetcher) (gallery.Strategy, error) {
	switch kind {
	case KindHybrid:
		return NewNative(l, files, bridge), nil
	case KindWeb:
		return NewWeb(l, files, fetcher), nil
	}
	_, err := ParseKind(string(kind))
	return nil, err
}
