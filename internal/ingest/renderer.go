package ingest

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// RenderScale is the fixed oversampling factor for page rasterization.
// 2x the 72 DPI PDF baseline keeps output sharp on high-density
// displays at the cost of render time and memory.
const RenderScale = 2

const basePDFDPI = 72

// PageRenderer opens a PDF buffer for rasterization. The concrete
// renderer is MuPDF-backed; pipelines take the interface so they can be
// exercised without cgo.
type PageRenderer interface {
	Open(data []byte) (PageSource, error)
}

// PageSource is an open document whose pages can be rasterized.
// Render takes a 1-based page index. A failed render is fatal for that
// page only; callers processing multiple pages catch per page and
// continue with the remaining ones.
type PageSource interface {
	PageCount() int
	Render(page int) (image.Image, error)
	Close() error
}

// FitzRenderer rasterizes PDF pages with MuPDF.
type FitzRenderer struct{}

func (FitzRenderer) Open(data []byte) (PageSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &fitzSource{doc: doc}, nil
}

type fitzSource struct {
	doc *fitz.Document
}

func (s *fitzSource) PageCount() int {
	return s.doc.NumPage()
}

func (s *fitzSource) Render(page int) (image.Image, error) {
	img, err := s.doc.ImageDPI(page-1, float64(basePDFDPI*RenderScale))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

func (s *fitzSource) Close() error {
	return s.doc.Close()
}
