package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/deckhand-io/deckhand/internal/auth"
	"github.com/deckhand-io/deckhand/internal/gcp"
	"github.com/deckhand-io/deckhand/internal/ingest"
	"github.com/deckhand-io/deckhand/internal/models"
)

var (
	pipeline  *ingest.RemotePipeline
	jwtSecret string
	once      sync.Once
	initErr   error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("ProcessPDF", processPDF)
}

// main is required by the Go Functions Framework.
func main() {}

func setup(ctx context.Context) error {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return errors.New("PROJECT_ID environment variable must be set")
	}
	bucket := gcp.GetEnv("SLIDES_BUCKET", "")
	if bucket == "" {
		return errors.New("SLIDES_BUCKET environment variable must be set")
	}
	jwtSecret = gcp.GetEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return errors.New("JWT_SECRET environment variable must be set")
	}

	blobs, err := gcp.NewBlobStore(ctx, bucket)
	if err != nil {
		return err
	}
	records, err := gcp.NewRecordStore(ctx, projectID)
	if err != nil {
		return err
	}

	pipeline = &ingest.RemotePipeline{
		Blobs:    blobs,
		Records:  records,
		Renderer: ingest.FitzRenderer{},
	}
	slog.Info("process-pdf initialized.", "bucket", bucket)
	return nil
}

func processPDF(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, content-type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	once.Do(func() { initErr = setup(context.Background()) })
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		writeResponse(w, http.StatusInternalServerError, models.ProcessPDFResponse{
			Success: false,
			Error:   "service unavailable",
		})
		return
	}

	// The credential is checked before any processing is attempted, and
	// an auth failure stays distinct from processing failures.
	if _, err := auth.VerifyBearer(r.Header.Get("Authorization"), jwtSecret); err != nil {
		writeResponse(w, http.StatusUnauthorized, models.ProcessPDFResponse{
			Success: false,
			Error:   ingest.ErrAuthFailure.Error(),
		})
		return
	}

	var req models.ProcessPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == "" || req.SourcePath == "" {
		writeResponse(w, http.StatusBadRequest, models.ProcessPDFResponse{
			Success: false,
			Error:   "documentId and sourcePath are required",
		})
		return
	}

	resp := pipeline.Process(r.Context(), req)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusInternalServerError
	}
	writeResponse(w, status, resp)
}

func writeResponse(w http.ResponseWriter, status int, resp models.ProcessPDFResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
