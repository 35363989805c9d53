package gcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/deckhand-io/deckhand/internal/models"
)

const (
	documentsCollection = "documents"
	slidesCollection    = "slides"
)

// RecordStore wraps Firestore with the document and slide operations
// the application needs. Slides live in a top-level collection keyed by
// documentId so they can be queried and watched independently of their
// parent document.
type RecordStore struct {
	client *firestore.Client
}

// NewRecordStore creates a RecordStore for the given project ID.
func NewRecordStore(ctx context.Context, projectID string) (*RecordStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a record store")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &RecordStore{client: client}, nil
}

// SlidesQuery returns the query matching one document's slides, used
// by snapshot listeners as well as reads.
func (s *RecordStore) SlidesQuery(documentID string) firestore.Query {
	return s.client.Collection(slidesCollection).Where("documentId", "==", documentID)
}

// CreateDocument inserts a new Document record and returns it with its
// generated identifier and timestamps filled in.
func (s *RecordStore) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	ref, _, err := s.client.Collection(documentsCollection).Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	doc.ID = ref.ID
	return doc, nil
}

// GetDocument fetches one Document with its slides, sorted by order.
// Readers must tolerate order gaps left by in-flight background
// processing, so slides are sorted rather than assumed dense.
func (s *RecordStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	snap, err := s.client.Collection(documentsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	doc.ID = snap.Ref.ID

	slides, err := s.ListSlides(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Slides = slides
	return &doc, nil
}

// ListDocuments returns all documents owned by ownerID, newest first.
func (s *RecordStore) ListDocuments(ctx context.Context, ownerID string) ([]models.Document, error) {
	it := s.client.Collection(documentsCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	var docs []models.Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents for %s: %w", ownerID, err)
		}
		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
		}
		doc.ID = snap.Ref.ID
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListSlides returns the slides of one document sorted by order index.
func (s *RecordStore) ListSlides(ctx context.Context, documentID string) ([]models.Slide, error) {
	it := s.SlidesQuery(documentID).Documents(ctx)
	var slides []models.Slide
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list slides for document %s: %w", documentID, err)
		}
		var slide models.Slide
		if err := snap.DataTo(&slide); err != nil {
			return nil, fmt.Errorf("failed to decode slide %s: %w", snap.Ref.ID, err)
		}
		slide.ID = snap.Ref.ID
		slides = append(slides, slide)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].Order < slides[j].Order })
	return slides, nil
}

// InsertSlide inserts one Slide record and returns it with its
// generated identifier.
func (s *RecordStore) InsertSlide(ctx context.Context, slide *models.Slide) (*models.Slide, error) {
	slide.CreatedAt = time.Now()
	ref, _, err := s.client.Collection(slidesCollection).Add(ctx, slide)
	if err != nil {
		return nil, fmt.Errorf("failed to insert slide record: %w", err)
	}
	slide.ID = ref.ID
	return slide, nil
}

// SetSlideCount records the final number of published slides on the
// Document record.
func (s *RecordStore) SetSlideCount(ctx context.Context, documentID string, count int) error {
	updates := []firestore.Update{
		{Path: "slideCount", Value: count},
		{Path: "updatedAt", Value: time.Now()},
	}
	if _, err := s.client.Collection(documentsCollection).Doc(documentID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update slide count of document %s: %w", documentID, err)
	}
	return nil
}

// UpdateSlide sets a slide's title and description.
func (s *RecordStore) UpdateSlide(ctx context.Context, slideID, title, description string) error {
	_, err := s.client.Collection(slidesCollection).Doc(slideID).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "description", Value: description},
	})
	if err != nil {
		return fmt.Errorf("failed to update slide %s: %w", slideID, err)
	}
	return nil
}

// DeleteDocument removes a Document record and all of its slide
// records. Storage artifacts are removed separately by the caller,
// which also owns the bucket prefix.
func (s *RecordStore) DeleteDocument(ctx context.Context, id string) error {
	it := s.SlidesQuery(id).Documents(ctx)
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to enumerate slides of document %s: %w", id, err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete slide %s: %w", snap.Ref.ID, err)
		}
	}
	if _, err := s.client.Collection(documentsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RecordStore) Close() error {
	return s.client.Close()
}
