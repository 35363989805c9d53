package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount returns the number of pages in a PDF byte buffer. A buffer
// that cannot be parsed yields ErrMalformedDocument.
func PageCount(pdf []byte) (int, error) {
	tempDir, err := os.MkdirTemp("", "deckhand-pagecount-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	source := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(source, pdf, 0o600); err != nil {
		return 0, fmt.Errorf("failed to write temp PDF: %w", err)
	}
	count, err := api.PageCountFile(source)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return count, nil
}

// ExtractPages splits a PDF byte buffer into N independently valid
// single-page PDF documents, in source page order. The source is
// optimized with relaxed validation first, which also serves as the
// parse gate: unparseable input yields ErrMalformedDocument and no
// artifacts. Page order in the result is authoritative for slide order
// indices.
func ExtractPages(ctx context.Context, pdf []byte) ([][]byte, error) {
	tempDir, err := os.MkdirTemp("", "deckhand-split-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	source := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(source, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF: %w", err)
	}

	optimized := filepath.Join(tempDir, "optimized.pdf")
	if err := optimizePDF(source, optimized); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	pageCount, err := api.PageCountFile(optimized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	if err := api.SplitFile(optimized, tempDir, 1, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	splitBase := strings.TrimSuffix(optimized, filepath.Ext(optimized))
	pages := make([][]byte, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := os.ReadFile(fmt.Sprintf("%s_%d.pdf", splitBase, i))
		if err != nil {
			return nil, fmt.Errorf("failed to read split page %d: %w", i, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func optimizePDF(inPath, outPath string) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.OptimizeFile(inPath, outPath, cfg)
}
