package models

import "time"

// Document is the top-level container of ordered slides, called a
// "presentation" in the UI layer. It is created once at the start of
// ingestion and may transiently have zero slides while ingestion is
// in flight.
type Document struct {
	ID         string    `firestore:"-" json:"id"`
	OwnerID    string    `firestore:"ownerId,omitempty" json:"owner_id"`
	Title      string    `firestore:"title,omitempty" json:"title"`
	SlideCount int       `firestore:"slideCount,omitempty" json:"slide_count"`
	CreatedAt  time.Time `firestore:"createdAt,omitempty" json:"created_at"`
	UpdatedAt  time.Time `firestore:"updatedAt,omitempty" json:"updated_at"`

	// Slides is populated on reads that join the slide collection; it is
	// never written through the Document record itself.
	Slides []Slide `firestore:"-" json:"slides,omitempty"`
}

// Slide is one ingested unit of visual content within a Document.
// Order is 1-based and unique within a document. It is usually dense
// from 1..N, but the incremental server pipeline may leave temporary
// gaps while background pages are still arriving, so readers must sort
// by Order rather than assume contiguity.
type Slide struct {
	ID          string    `firestore:"-" json:"id"`
	DocumentID  string    `firestore:"documentId,omitempty" json:"document_id"`
	Order       int       `firestore:"slideOrder,omitempty" json:"slide_order"`
	ImageURL    string    `firestore:"imageUrl,omitempty" json:"image_url"`
	Title       string    `firestore:"title,omitempty" json:"title"`
	Description string    `firestore:"description" json:"description"`
	CreatedAt   time.Time `firestore:"createdAt,omitempty" json:"created_at"`
}
