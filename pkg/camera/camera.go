package camera

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

type (
	// ResultType how the captured image is handed back
	ResultType string
	// Source where the image comes from
	Source string
)

const (
	ResultTypeURI     ResultType = "uri"
	ResultTypeBase64  ResultType = "base64"
	ResultTypeDataURL ResultType = "dataUrl"

	SourceCamera Source = "CAMERA"
	SourcePhotos Source = "PHOTOS"
	SourcePrompt Source = "PROMPT"
)

var (
	// ErrCaptureDeclined the user cancelled or permission was denied
	ErrCaptureDeclined = errors.New("capture declined")
	// ErrCaptureFailed the camera could not produce an image
	ErrCaptureFailed = errors.New("capture failed")
)

type (
	Options struct {
		ResultType ResultType
		Source     Source
		// Quality JPEG quality 0-100
		Quality int
		// CorrectOrientation rotates the image upright according to its EXIF orientation
		CorrectOrientation bool
	}
	// Image reference to a captured image
	Image struct {
		// Path local filesystem path, set on platforms with file access
		Path string `json:"path,omitempty"`
		// WebPath web accessible path
		WebPath string `json:"webPath,omitempty"`
		Format  string `json:"format"`
		// Temporary Path is a scratch copy owned by the camera, see Discard
		Temporary bool `json:"-"`
	}
	Camera interface {
		GetPhoto(ctx context.Context, opts Options) (*Image, error)
	}
	// Func adapts a function to the Camera interface
	Func func(ctx context.Context, opts Options) (*Image, error)
)

// DefaultOptions the options used for every gallery capture
func DefaultOptions() Options {
	return Options{
		ResultType:         ResultTypeURI,
		Source:             SourceCamera,
		Quality:            100,
		CorrectOrientation: true,
	}
}

func (f Func) GetPhoto(ctx context.Context, opts Options) (*Image, error) {
	return f(ctx, opts)
}

// Discard removes the scratch file of a temporary image once it is stored.
func Discard(img *Image) error {
	if img == nil || !img.Temporary || img.Path == "" {
		return nil
	}
	if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove captured image")
	}
	return nil
}
