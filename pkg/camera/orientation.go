package camera

import (
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation reads the EXIF orientation of the file at path, 1 if unknown.
func Orientation(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// no or broken exif data
		return 1, nil
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1, nil
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1, nil
	}
	return o, nil
}

// Normalize rotates the image at path upright and re-encodes it with the
// given JPEG quality. It reports whether the file was rewritten.
func Normalize(path string, quality int) (bool, error) {
	o, err := Orientation(path)
	if err != nil {
		return false, err
	}
	if o == 1 {
		return false, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return false, errors.Wrap(err, "failed to decode image")
	}
	if err := imaging.Save(applyOrientation(img, o), path, imaging.JPEGQuality(clampQuality(quality))); err != nil {
		return false, errors.Wrap(err, "failed to encode image")
	}
	return true, nil
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

func clampQuality(q int) int {
	switch {
	case q <= 0:
		return 1
	case q > 100:
		return 100
	}
	return q
}
