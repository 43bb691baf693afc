package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image format (jpeg/png/webp)")

// NormalizeToJPG decodes jpeg/png/webp, applies the EXIF orientation, shrinks the
// image to maxWidth (0 keeps the size) and re-encodes it as JPEG.
func NormalizeToJPG(input []byte, maxWidth int, quality int) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	img, err := decodeStrict(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	img = applyOrientation(img, readEXIFOrientation(bytes.NewReader(input)))
	if maxWidth > 0 {
		img = resizeMaxWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeStrict(r *bytes.Reader) (image.Image, error) {
	decoders := []func(io.Reader) (image.Image, error){jpeg.Decode, png.Decode, webp.Decode}
	for _, decode := range decoders {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if img, err := decode(r); err == nil {
			return img, nil
		}
	}
	return nil, ErrUnsupportedImage
}

func readEXIFOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// remap builds a w x h image whose pixel (x, y) is src(from(x, y)).
func remap(src image.Image, w, h int, from func(x, y int) (int, int)) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := from(x, y)
			dst.Set(x, y, src.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

// applyOrientation undoes EXIF orientations 2..8; 1 and unknown values pass through.
func applyOrientation(src image.Image, ori int) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	switch ori {
	case 2: // mirrored
		return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
	case 3: // 180
		return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4: // flipped
		return remap(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
	case 5: // transpose
		return remap(src, h, w, func(x, y int) (int, int) { return y, x })
	case 6: // 90 cw
		return remap(src, h, w, func(x, y int) (int, int) { return y, h - 1 - x })
	case 7: // transverse
		return remap(src, h, w, func(x, y int) (int, int) { return w - 1 - y, h - 1 - x })
	case 8: // 90 ccw
		return remap(src, h, w, func(x, y int) (int, int) { return w - 1 - y, x })
	default:
		return src
	}
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	newH := int(math.Round(float64(h) * float64(maxW) / float64(w)))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
