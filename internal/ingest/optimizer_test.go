package ingest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		for y := 0; y < h; y += 7 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestOptimizeBoundsOversizedImage(t *testing.T) {
	out, contentType := Optimize(encodePNG(t, 5000, 3000), "image/png")
	assert.Equal(t, "image/jpeg", contentType)

	w, h := decodeSize(t, out)
	assert.LessOrEqual(t, w, MaxSlideWidth)
	assert.LessOrEqual(t, h, MaxSlideHeight)

	// Aspect ratio preserved within rounding tolerance.
	assert.InDelta(t, 5000.0/3000.0, float64(w)/float64(h), 0.01)
}

func TestOptimizeTallImageBoundsHeight(t *testing.T) {
	out, contentType := Optimize(encodePNG(t, 1080, 4000), "image/png")
	assert.Equal(t, "image/jpeg", contentType)

	w, h := decodeSize(t, out)
	assert.Equal(t, MaxSlideHeight, h)
	assert.InDelta(t, 1080.0/4000.0, float64(w)/float64(h), 0.01)
}

func TestOptimizeNeverUpscales(t *testing.T) {
	out, contentType := Optimize(encodePNG(t, 640, 480), "image/png")
	assert.Equal(t, "image/jpeg", contentType)

	w, h := decodeSize(t, out)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestOptimizeAcceptsJPEGInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2400, 1200))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, contentType := Optimize(buf.Bytes(), "image/jpeg")
	assert.Equal(t, "image/jpeg", contentType)
	w, h := decodeSize(t, out)
	assert.LessOrEqual(t, w, MaxSlideWidth)
	assert.LessOrEqual(t, h, MaxSlideHeight)
}

func TestOptimizeReturnsOriginalOnUndecodableInput(t *testing.T) {
	original := []byte("not an image at all")
	out, contentType := Optimize(original, "image/png")
	assert.Equal(t, original, out)
	assert.Equal(t, "image/png", contentType)
}

func TestBoundedSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1920, 1080, 1920, 1080},
		{1, 1, 1, 1},
		{3840, 2160, 1920, 1080},
		{5000, 3000, 1800, 1080},
		{2000, 100, 1920, 96},
		{100, 2000, 54, 1080},
	}
	for _, tt := range tests {
		w, h := boundedSize(tt.w, tt.h)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
	}
}
