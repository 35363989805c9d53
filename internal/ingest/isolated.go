package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/deckhand-io/deckhand/internal/models"
)

// CreateDocumentFromPages ingests a PDF as isolated single-page PDF
// artifacts instead of rasters, for deployments where rendering happens
// in the viewer. The artifact type stays uniform for the whole
// document.
//
// Page uploads run through a bounded pool; a failed page is skipped and
// its siblings continue, and as with the raster path a document with
// zero published slides is deleted again.
func (p *LocalPipeline) CreateDocumentFromPages(ctx context.Context, ownerID, title string, pdf []byte) (*models.Document, error) {
	pages, err := ExtractPages(ctx, pdf)
	if err != nil {
		return nil, err
	}

	doc, err := p.Records.CreateDocument(ctx, &models.Document{OwnerID: ownerID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	logCtx := slog.With("documentId", doc.ID)
	logCtx.Info("Publishing isolated pages.", "pageCount", len(pages))

	pub := &Publisher{Blobs: p.Blobs, Records: p.Records}

	var mu sync.Mutex
	slides := make([]*models.Slide, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10)

	for i, page := range pages {
		order := i + 1
		page := page
		g.Go(func() error {
			slide, err := pub.Publish(gctx, doc.ID, order, page, "application/pdf")
			if err != nil {
				logCtx.Warn("Failed to publish page, skipping.", "page", order, "error", err)
				return nil
			}
			mu.Lock()
			slides[order-1] = slide
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.compensate(ctx, logCtx, doc.ID)
		return nil, err
	}

	for _, slide := range slides {
		if slide != nil {
			doc.Slides = append(doc.Slides, *slide)
		}
	}
	if len(doc.Slides) == 0 {
		p.compensate(ctx, logCtx, doc.ID)
		return nil, ErrNoSlides
	}
	doc.SlideCount = len(doc.Slides)
	if err := p.Records.SetSlideCount(ctx, doc.ID, doc.SlideCount); err != nil {
		logCtx.Warn("Failed to persist slide count.", "error", err)
	}
	logCtx.Info("Document ingested.", "slideCount", doc.SlideCount)
	return doc, nil
}
