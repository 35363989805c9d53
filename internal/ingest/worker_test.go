package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckhand-io/deckhand/internal/models"
)

func TestParseIntakePath(t *testing.T) {
	owner, file, ok := parseIntakePath("intake/user-1/deck.pdf")
	require.True(t, ok)
	assert.Equal(t, "user-1", owner)
	assert.Equal(t, "deck.pdf", file)

	for _, object := range []string{
		"doc-1/1.jpg",
		"temp/doc-1/src.pdf",
		"intake/",
		"intake/user-1",
		"intake/user-1/nested/deck.pdf",
	} {
		_, _, ok := parseIntakePath(object)
		assert.False(t, ok, "object %q", object)
	}
}

func TestIntakeWorkerIgnoresNonIntakeObjects(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	w := &IntakeWorker{Blobs: blobs, Pipeline: localPipeline(blobs, records, fakeRenderer{pages: 1})}

	err := w.Process(context.Background(), models.IntakeEvent{Bucket: "b", Name: "doc-1/1.jpg"})
	require.NoError(t, err)
	assert.Empty(t, records.docs)
}

func TestIntakeWorkerIngestsDrop(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	w := &IntakeWorker{Blobs: blobs, Pipeline: localPipeline(blobs, records, fakeRenderer{pages: 2})}

	stagePDF(t, blobs, "intake/user-1/quarterly.pdf")
	err := w.Process(context.Background(), models.IntakeEvent{Bucket: "b", Name: "intake/user-1/quarterly.pdf"})
	require.NoError(t, err)

	require.Len(t, records.docs, 1)
	for _, doc := range records.docs {
		assert.Equal(t, "user-1", doc.OwnerID)
		assert.Equal(t, "quarterly", doc.Title)
		assert.Len(t, records.slidesFor(doc.ID), 2)
	}

	// The intake object is removed once ingestion succeeds.
	assert.False(t, blobs.has("intake/user-1/quarterly.pdf"))
}

func TestIntakeWorkerIsolatedPDFMode(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	w := &IntakeWorker{
		Blobs:       blobs,
		Pipeline:    localPipeline(blobs, records, fakeRenderer{}),
		IsolatedPDF: true,
	}

	require.NoError(t, blobs.Upload(context.Background(), "intake/user-1/spec.pdf", makePDF(t, 2), "application/pdf"))
	err := w.Process(context.Background(), models.IntakeEvent{Bucket: "b", Name: "intake/user-1/spec.pdf"})
	require.NoError(t, err)

	require.Len(t, records.docs, 1)
	for id := range records.docs {
		slides := records.slidesFor(id)
		require.Len(t, slides, 2)
		assert.Equal(t, "application/pdf", blobs.contentTypes[id+"/1.pdf"])
	}
}

func TestIntakeWorkerPropagatesIngestFailure(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	w := &IntakeWorker{Blobs: blobs, Pipeline: localPipeline(blobs, records, fakeRenderer{openErr: ErrMalformedDocument})}

	stagePDF(t, blobs, "intake/user-1/broken.pdf")
	err := w.Process(context.Background(), models.IntakeEvent{Bucket: "b", Name: "intake/user-1/broken.pdf"})
	require.ErrorIs(t, err, ErrMalformedDocument)
	assert.Empty(t, records.docs)
}
