package ingest

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Slide artifacts are bounded to 1920x1080 and re-encoded as JPEG at a
// fixed quality, whatever the source format.
const (
	MaxSlideWidth  = 1920
	MaxSlideHeight = 1080
	jpegQuality    = 85
)

// Optimize normalizes an encoded image blob into a bounded JPEG and
// returns the new blob with its content type. It is best-effort, not a
// hard gate: on any decode or encode failure the original blob and
// content type come back unchanged.
func Optimize(data []byte, contentType string) ([]byte, string) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Image optimization skipped, using original.", "error", err)
		return data, contentType
	}
	out, err := OptimizeImage(img)
	if err != nil {
		slog.Warn("Image optimization skipped, using original.", "error", err)
		return data, contentType
	}
	return out, "image/jpeg"
}

// OptimizeImage resizes a decoded bitmap to the slide bounds and
// encodes it as JPEG.
func OptimizeImage(img image.Image) ([]byte, error) {
	b := img.Bounds()
	w, h := boundedSize(b.Dx(), b.Dy())
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// boundedSize scales dimensions uniformly down to fit the slide bounds,
// preserving aspect ratio. Dimensions already within bounds pass
// through unchanged; nothing is ever scaled up.
func boundedSize(w, h int) (int, int) {
	if w <= MaxSlideWidth && h <= MaxSlideHeight {
		return w, h
	}
	ratio := math.Min(
		float64(MaxSlideWidth)/float64(w),
		float64(MaxSlideHeight)/float64(h),
	)
	w = int(float64(w) * ratio)
	h = int(float64(h) * ratio)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
