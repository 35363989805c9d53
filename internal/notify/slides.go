// Package notify streams slide insertions for one document, so callers
// can observe background-processed pages arriving after the initial
// process-pdf response.
//
// The stream is a delivery hint only: the background task has no
// terminal signal, so a subscription must never be treated as the
// source of truth for ingestion completeness.
package notify

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/deckhand-io/deckhand/internal/models"
)

// WatchSlides emits one Slide per record added to the watched query,
// in snapshot order. The returned stop function tears the subscription
// down; the channel closes when the subscription ends for any reason.
func WatchSlides(ctx context.Context, query firestore.Query) (<-chan models.Slide, func()) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan models.Slide, 16)

	go func() {
		defer close(ch)
		it := query.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("Slide subscription ended.", "error", err)
				}
				return
			}
			for _, change := range snap.Changes {
				if change.Kind != firestore.DocumentAdded {
					continue
				}
				var slide models.Slide
				if err := change.Doc.DataTo(&slide); err != nil {
					slog.Warn("Failed to decode slide event.", "slideId", change.Doc.Ref.ID, "error", err)
					continue
				}
				slide.ID = change.Doc.Ref.ID
				select {
				case ch <- slide:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, cancel
}
