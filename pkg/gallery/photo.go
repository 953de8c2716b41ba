package gallery

import (
	"context"

	"github.com/foomo/photogallery/pkg/camera"
)

// JPEGDataURLPrefix prefix of rehydrated viewable paths
const JPEGDataURLPrefix = "data:image/jpeg;base64,"

type (
	// Photo a stored photo record
	Photo struct {
		// Filepath stable locator of the stored image: an absolute URI on native
		// platforms, a bare file name otherwise
		Filepath string `json:"filepath" yaml:"filepath"`
		// WebviewPath renderable reference, derived from Filepath
		WebviewPath string `json:"webviewPath,omitempty" yaml:"webviewPath,omitempty"`
	}
	// Strategy stores captured images and restores viewable paths, one
	// implementation per platform class.
	Strategy interface {
		// Native reports whether the platform has direct file system access
		Native() bool
		// SavePicture persists the captured image under fileName
		SavePicture(ctx context.Context, img *camera.Image, fileName string) (*Photo, error)
		// Rehydrate recomputes viewable paths of loaded photos in place
		Rehydrate(ctx context.Context, photos []Photo) error
		// Persistable returns the form of photos written to the key-value store
		Persistable(photos []Photo) []Photo
	}
)
