package ingest

import (
	"context"

	"github.com/deckhand-io/deckhand/internal/models"
)

// BlobStore is the object-storage surface the pipeline consumes.
// *gcp.BlobStore implements it against one GCS bucket.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Download(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, paths ...string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// RecordStore is the record-insertion surface the pipeline consumes.
// *gcp.RecordStore implements it against Firestore.
type RecordStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error)
	InsertSlide(ctx context.Context, slide *models.Slide) (*models.Slide, error)
	SetSlideCount(ctx context.Context, documentID string, count int) error
	DeleteDocument(ctx context.Context, id string) error
}

// DeleteDocumentAndArtifacts removes a document's records and every
// stored artifact under its prefix. Record deletion cascades to slides;
// artifact removal runs after so a failed storage call never leaves
// slide records pointing at deleted objects.
func DeleteDocumentAndArtifacts(ctx context.Context, blobs BlobStore, records RecordStore, documentID string) error {
	if err := records.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	paths, err := blobs.List(ctx, documentID+"/")
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	return blobs.Remove(ctx, paths...)
}
