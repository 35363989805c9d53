package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/deckhand-io/deckhand/internal/gcp"
	"github.com/deckhand-io/deckhand/internal/ingest"
	"github.com/deckhand-io/deckhand/internal/models"
)

var (
	worker  *ingest.IntakeWorker
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes storage
	// finalize events here.
	functions.CloudEvent("IngestUpload", ingestUpload)
}

// main is required by the Go Functions Framework.
func main() {}

func setup(ctx context.Context) (*ingest.IntakeWorker, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, errors.New("PROJECT_ID environment variable must be set")
	}
	bucket := gcp.GetEnv("SLIDES_BUCKET", "")
	if bucket == "" {
		return nil, errors.New("SLIDES_BUCKET environment variable must be set")
	}

	blobs, err := gcp.NewBlobStore(ctx, bucket)
	if err != nil {
		return nil, err
	}
	records, err := gcp.NewRecordStore(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ingest.IntakeWorker{
		Blobs: blobs,
		Pipeline: &ingest.LocalPipeline{
			Blobs:    blobs,
			Records:  records,
			Renderer: ingest.FitzRenderer{},
		},
		IsolatedPDF: gcp.GetEnv("INTAKE_ARTIFACTS", "jpeg") == "pdf",
	}, nil
}

// ingestUpload is the Cloud Function entry point for storage events.
func ingestUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() { worker, initErr = setup(context.Background()) })
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var ev models.IntakeEvent
	if err := json.Unmarshal(e.Data(), &ev); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return worker.Process(ctx, ev)
}
