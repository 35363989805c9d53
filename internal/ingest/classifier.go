package ingest

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the pipeline branch a source file is routed to.
type Kind int

const (
	KindPDF Kind = iota + 1
	KindImage
)

// MaxFileSize is the largest accepted upload, 50 MiB.
const MaxFileSize = 50 * 1024 * 1024

// Classify routes an uploaded file to a pipeline branch based on its
// declared media type and size. Exactly application/pdf goes to the PDF
// branch, any image/* type to the image branch; everything else is
// rejected before any network or storage call is made.
//
// When the declared type is empty, the media type is sniffed from the
// leading bytes instead.
func Classify(declaredType string, size int64, head []byte) (Kind, error) {
	if size > MaxFileSize {
		return 0, ErrOversizeFile
	}

	mime := declaredType
	if mime == "" {
		mime = mimetype.Detect(head).String()
	}
	// Strip parameters such as "; charset=binary".
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	switch {
	case mime == "application/pdf":
		return KindPDF, nil
	case strings.HasPrefix(mime, "image/"):
		return KindImage, nil
	default:
		return 0, ErrUnsupportedType
	}
}
