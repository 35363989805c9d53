package ingest

import (
	"context"
	"fmt"

	"github.com/deckhand-io/deckhand/internal/models"
)

// Publisher persists finished artifacts as numbered slides of a
// document: upload to object storage keyed by {documentID}/{order},
// resolve the durable public URL, then insert the slide record.
//
// The record is inserted only after the upload succeeds, so no slide
// ever references an artifact that was never stored. The reverse gap is
// accepted: if the record insert fails after a successful upload, the
// orphaned artifact stays in storage and the failure is logged by the
// caller.
type Publisher struct {
	Blobs   BlobStore
	Records RecordStore
}

// Publish uploads one artifact and records it as the slide at the given
// order index.
func (p *Publisher) Publish(ctx context.Context, documentID string, order int, data []byte, contentType string) (*models.Slide, error) {
	path := fmt.Sprintf("%s/%d.%s", documentID, order, extensionFor(contentType))
	if err := p.Blobs.Upload(ctx, path, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload slide %d: %w", order, err)
	}

	slide := &models.Slide{
		DocumentID: documentID,
		Order:      order,
		ImageURL:   p.Blobs.PublicURL(path),
		Title:      fmt.Sprintf("Slide %d", order),
	}
	slide, err := p.Records.InsertSlide(ctx, slide)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record for slide %d: %w", order, err)
	}
	return slide, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "application/pdf":
		return "pdf"
	default:
		return "bin"
	}
}
