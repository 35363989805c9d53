package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deckhand-io/deckhand/internal/models"
)

// SourceFile is a file handle delivered by the upload surface.
type SourceFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// LocalPipeline ingests uploads in-process: classify, extract and
// render PDF pages, optimize, publish. Pages are processed
// sequentially; a failed page is skipped and its siblings continue.
type LocalPipeline struct {
	Blobs    BlobStore
	Records  RecordStore
	Renderer PageRenderer
}

// CreateDocument is the single client-facing entry point. It creates
// the Document record, ingests every file into ordered slides, and
// returns the document with its published slides attached.
//
// Whole-document failures (malformed PDF, zero slides published) delete
// the just-created document as a compensating action so callers never
// see an orphaned empty document.
func (p *LocalPipeline) CreateDocument(ctx context.Context, ownerID, title string, files []SourceFile) (*models.Document, error) {
	if len(files) == 0 {
		return nil, ErrUnsupportedType
	}

	// Classify everything up front; a rejected file aborts before any
	// network or storage call is made.
	kinds := make([]Kind, len(files))
	for i, f := range files {
		size := f.Size
		if size == 0 {
			size = int64(len(f.Data))
		}
		kind, err := Classify(f.ContentType, size, f.Data)
		if err != nil {
			return nil, err
		}
		kinds[i] = kind
	}
	for _, k := range kinds {
		if k == KindPDF && len(files) > 1 {
			return nil, fmt.Errorf("a PDF must be uploaded on its own: %w", ErrUnsupportedType)
		}
	}

	doc, err := p.Records.CreateDocument(ctx, &models.Document{OwnerID: ownerID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	logCtx := slog.With("documentId", doc.ID)

	pub := &Publisher{Blobs: p.Blobs, Records: p.Records}

	var slides []models.Slide
	if kinds[0] == KindPDF {
		slides, err = p.ingestPDF(ctx, logCtx, pub, doc.ID, files[0].Data)
		if err != nil {
			p.compensate(ctx, logCtx, doc.ID)
			return nil, err
		}
	} else {
		slides = p.ingestImages(ctx, logCtx, pub, doc.ID, files)
	}

	if len(slides) == 0 {
		p.compensate(ctx, logCtx, doc.ID)
		return nil, ErrNoSlides
	}

	doc.Slides = slides
	doc.SlideCount = len(slides)
	// The record was inserted before any slide existed; persist the
	// final count. Slide records stay authoritative if this write
	// fails, so the document is not torn down over it.
	if err := p.Records.SetSlideCount(ctx, doc.ID, len(slides)); err != nil {
		logCtx.Warn("Failed to persist slide count.", "error", err)
	}
	logCtx.Info("Document ingested.", "slideCount", len(slides))
	return doc, nil
}

// ingestPDF rasterizes each page at the fixed oversampling scale,
// optimizes it and publishes it. Per-page render, optimize and publish
// failures skip that page only.
func (p *LocalPipeline) ingestPDF(ctx context.Context, logCtx *slog.Logger, pub *Publisher, documentID string, pdf []byte) ([]models.Slide, error) {
	src, err := p.Renderer.Open(pdf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pageCount := src.PageCount()
	logCtx.Info("Rendering PDF pages.", "pageCount", pageCount)

	var slides []models.Slide
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return slides, err
		}
		slide, err := publishRenderedPage(ctx, src, pub, documentID, page)
		if err != nil {
			logCtx.Warn("Failed to publish page, skipping.", "page", page, "error", err)
			continue
		}
		slides = append(slides, *slide)
	}
	return slides, nil
}

// ingestImages publishes each uploaded image as one slide, in file
// order. Failed files are skipped.
func (p *LocalPipeline) ingestImages(ctx context.Context, logCtx *slog.Logger, pub *Publisher, documentID string, files []SourceFile) []models.Slide {
	var slides []models.Slide
	for i, f := range files {
		data, contentType := Optimize(f.Data, f.ContentType)
		slide, err := pub.Publish(ctx, documentID, i+1, data, contentType)
		if err != nil {
			logCtx.Warn("Failed to publish image, skipping.", "file", f.Name, "order", i+1, "error", err)
			continue
		}
		slides = append(slides, *slide)
	}
	return slides
}

func (p *LocalPipeline) compensate(ctx context.Context, logCtx *slog.Logger, documentID string) {
	if err := p.Records.DeleteDocument(ctx, documentID); err != nil {
		logCtx.Error("CRITICAL: Failed to delete empty document after a processing error.", "error", err)
	}
}
