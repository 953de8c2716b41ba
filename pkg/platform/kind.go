package platform

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind platform class a strategy is selected for
type Kind string

const (
	// KindHybrid platforms with native file system access
	KindHybrid Kind = "hybrid"
	// KindWeb platforms without native file system access
	KindWeb Kind = "web"
)

var ErrUnknownKind = errors.New("unknown platform kind")

// ParseKind parses a configured platform name.
func ParseKind(v string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(v))) {
	case KindHybrid, "native":
		return KindHybrid, nil
	case KindWeb, "browser":
		return KindWeb, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q (supported: hybrid, web)", v)
}

// IsNativePlatform reports whether the kind offers direct file system access.
func IsNativePlatform(kind Kind) bool {
	return kind == KindHybrid
}
