// Package imaging prepares menu item photos before they are uploaded:
// the format is sniffed from the bytes, large photos are scaled down and
// everything is re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxBytes is the largest upload the backend accepts.
	MaxBytes = 5 << 20
	// MaxDimension bounds the width and height of the stored photo.
	MaxDimension = 1024
	JPEGQuality  = 85
)

var (
	ErrTooLarge    = errors.New("image exceeds 5 MB")
	ErrUnsupported = errors.New("unsupported image format")
)

var allowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Photo is a processed image ready for upload.
type Photo struct {
	Data          []byte
	MIME          string
	Width, Height int
}

// Process reads at most MaxBytes from r, validates the format by sniffing
// and returns a JPEG no larger than MaxDimension on either side.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	// the client's Content-Type is not trusted
	detected := http.DetectContentType(data)
	if !allowed[detected] {
		return nil, fmt.Errorf("%w: %s (JPEG, PNG or WebP accepted)", ErrUnsupported, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = flatten(downscale(img, MaxDimension))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// Filename swaps the extension of name for .jpg.
func Filename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}

// downscale keeps the aspect ratio.  Images already within bounds are
// returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, int(float64(h)*float64(maxDim)/float64(w)))
	} else {
		newW = max(1, int(float64(w)*float64(maxDim)/float64(h)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// flatten composes img over white so transparent PNG and WebP areas do
// not turn black in the JPEG.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
