package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestPNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessKeepsSmallImages(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestPNG(120, 80, color.RGBA{0, 0, 255, 255})))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.MIME != "image/jpeg" || photo.Width != 120 || photo.Height != 80 {
		t.Errorf("unexpected photo %s %dx%d", photo.MIME, photo.Width, photo.Height)
	}
	if _, err := jpeg.Decode(bytes.NewReader(photo.Data)); err != nil {
		t.Errorf("output is not a JPEG: %v", err)
	}
}

func TestProcessDownscales(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestPNG(2048, 512, color.RGBA{255, 0, 0, 255})))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.Width != MaxDimension || photo.Height != 256 {
		t.Errorf("expected 1024x256, got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessFlattensTransparency(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestPNG(16, 16, color.RGBA{0, 0, 0, 0})))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, _ := jpeg.Decode(bytes.NewReader(photo.Data))
	r, g, b, _ := img.At(8, 8).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("transparent area should be white, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessRejects(t *testing.T) {
	if _, err := Process(bytes.NewReader([]byte("GIF89a not really"))); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	big := make([]byte, MaxBytes+10)
	copy(big, createTestPNG(1, 1, color.White))
	if _, err := Process(bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"dish.png":         "dish.jpg",
		"../../etc/a.webp": "a.jpg",
		"noext":            "noext.jpg",
		"":                 "image.jpg",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}
