package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/deckhand-io/deckhand/internal/models"
)

// IntakePrefix is where clients drop whole source files for
// event-driven ingestion: intake/{ownerID}/{filename}.
const IntakePrefix = "intake/"

// IntakeWorker ingests files dropped under the intake prefix. Unlike
// the incremental process-pdf path it publishes every page before
// finishing, so a retried event re-runs the whole ingestion.
type IntakeWorker struct {
	Blobs    BlobStore
	Pipeline *LocalPipeline

	// IsolatedPDF publishes PDF pages as single-page PDF artifacts
	// instead of rasters, for deployments with inline document viewers.
	IsolatedPDF bool
}

// Process handles one storage event. Objects outside the intake prefix
// are ignored with a clean exit so the trigger can cover the whole
// bucket.
func (w *IntakeWorker) Process(ctx context.Context, ev models.IntakeEvent) error {
	logCtx := slog.With("bucket", ev.Bucket, "object", ev.Name)

	ownerID, fileName, ok := parseIntakePath(ev.Name)
	if !ok {
		logCtx.Debug("Object is not an intake drop. Skipping.")
		return nil
	}
	logCtx.Info("Processing intake object.", "ownerId", ownerID)

	data, err := w.Blobs.Download(ctx, ev.Name)
	if err != nil {
		logCtx.Error("Failed to download intake object.", "error", err)
		return err
	}

	title := strings.TrimSuffix(fileName, path.Ext(fileName))

	var doc *models.Document
	if w.IsolatedPDF && strings.EqualFold(path.Ext(fileName), ".pdf") {
		doc, err = w.Pipeline.CreateDocumentFromPages(ctx, ownerID, title, data)
	} else {
		doc, err = w.Pipeline.CreateDocument(ctx, ownerID, title, []SourceFile{{
			Name: fileName,
			Data: data,
		}})
	}
	if err != nil {
		logCtx.Error("Failed to ingest intake object.", "error", err)
		return fmt.Errorf("failed to ingest %s: %w", ev.Name, err)
	}
	logCtx = logCtx.With("documentId", doc.ID)

	if err := w.Blobs.Remove(ctx, ev.Name); err != nil {
		logCtx.Warn("Failed to clean up intake object.", "error", err)
	}

	logCtx.Info("Intake ingestion complete.", "slideCount", doc.SlideCount)
	return nil
}

func parseIntakePath(object string) (ownerID, fileName string, ok bool) {
	rest, found := strings.CutPrefix(object, IntakePrefix)
	if !found {
		return "", "", false
	}
	ownerID, fileName, found = strings.Cut(rest, "/")
	if !found || ownerID == "" || fileName == "" || strings.Contains(fileName, "/") {
		return "", "", false
	}
	return ownerID, fileName, true
}
