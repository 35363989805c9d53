package ingest

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"time"

	"github.com/deckhand-io/deckhand/internal/models"
)

// defaultPageDelay smooths load on storage and the record store while
// background pages are published.
const defaultPageDelay = 300 * time.Millisecond

// RemotePipeline is the server-side pipeline with incremental delivery:
// page 1 is processed synchronously so the caller gets an immediate
// result, then pages 2..N are published by a detached background task
// the caller never awaits.
//
// The background task is best-effort, at most once per page. It has no
// cancellation and no completion signal back to the caller; completion
// is observed only through new slide records appearing. If the process
// is recycled mid-task the remaining pages are simply never produced.
type RemotePipeline struct {
	Blobs    BlobStore
	Records  RecordStore
	Renderer PageRenderer

	// PageDelay is the pause before each background page. Zero means
	// the 300ms default.
	PageDelay time.Duration
}

// Process downloads the source PDF, publishes page 1 synchronously and
// answers with it, then continues with the remaining pages in the
// background. The temporary source object is removed after page 1 is
// handled; that cleanup is best-effort and never surfaces to the
// caller.
func (p *RemotePipeline) Process(ctx context.Context, req models.ProcessPDFRequest) models.ProcessPDFResponse {
	logCtx := slog.With("documentId", req.DocumentID, "sourcePath", req.SourcePath)
	logCtx.Info("Processing PDF.")

	pdf, err := p.Blobs.Download(ctx, req.SourcePath)
	if err != nil {
		logCtx.Error("Failed to download source PDF.", "error", err)
		return models.ProcessPDFResponse{Success: false, Error: "failed to download PDF: " + err.Error()}
	}

	src, err := p.Renderer.Open(pdf)
	if err != nil {
		logCtx.Error("Failed to open source PDF.", "error", err)
		return models.ProcessPDFResponse{Success: false, Error: ErrMalformedDocument.Error()}
	}

	pageCount := src.PageCount()
	logCtx.Info("Source PDF opened.", "pageCount", pageCount)

	pub := &Publisher{Blobs: p.Blobs, Records: p.Records}
	first, err := publishRenderedPage(ctx, src, pub, req.DocumentID, 1)
	if err != nil {
		src.Close()
		logCtx.Error("Failed to process first page.", "error", err)
		return models.ProcessPDFResponse{Success: false, Error: "failed to process first page: " + err.Error()}
	}

	// The document record was created before processing started;
	// persist the real page count now that the first page is live.
	// Slide records stay authoritative if this write fails.
	if err := p.Records.SetSlideCount(ctx, req.DocumentID, pageCount); err != nil {
		logCtx.Warn("Failed to persist slide count.", "error", err)
	}

	// The request context ends when we answer; cleanup and background
	// publishing must outlive it.
	detachedCtx := context.WithoutCancel(ctx)

	go func() {
		if err := p.Blobs.Remove(detachedCtx, req.SourcePath); err != nil {
			logCtx.Warn("Failed to clean up temporary source PDF.", "error", err)
		}
	}()

	if pageCount > 1 {
		go p.publishRemaining(detachedCtx, logCtx, src, pub, req.DocumentID, pageCount)
	} else {
		src.Close()
	}

	return models.ProcessPDFResponse{
		Success:        true,
		Slides:         []models.Slide{*first},
		PageCount:      pageCount,
		ProcessedCount: 1,
	}
}

// publishRemaining handles pages 2..N sequentially in increasing order,
// pausing between pages. A failed page is skipped; siblings continue.
func (p *RemotePipeline) publishRemaining(ctx context.Context, logCtx *slog.Logger, src PageSource, pub *Publisher, documentID string, pageCount int) {
	defer src.Close()

	delay := p.PageDelay
	if delay <= 0 {
		delay = defaultPageDelay
	}

	published := 1
	for page := 2; page <= pageCount; page++ {
		time.Sleep(delay)
		if _, err := publishRenderedPage(ctx, src, pub, documentID, page); err != nil {
			logCtx.Warn("Failed to publish background page, skipping.", "page", page, "error", err)
			continue
		}
		published++
	}
	logCtx.Info("Background processing finished.", "published", published, "pageCount", pageCount)
}

// publishRenderedPage rasterizes one page, optimizes it and publishes
// it as the slide for that order index. The decoded bitmap feeds the
// optimizer directly; PNG is only the fallback encoding when the JPEG
// re-encode fails.
func publishRenderedPage(ctx context.Context, src PageSource, pub *Publisher, documentID string, page int) (*models.Slide, error) {
	img, err := src.Render(page)
	if err != nil {
		return nil, err
	}
	data, err := OptimizeImage(img)
	contentType := "image/jpeg"
	if err != nil {
		var raw bytes.Buffer
		if encErr := png.Encode(&raw, img); encErr != nil {
			return nil, encErr
		}
		data = raw.Bytes()
		contentType = "image/png"
	}
	return pub.Publish(ctx, documentID, page, data, contentType)
}
