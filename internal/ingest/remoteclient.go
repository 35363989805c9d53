package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/deckhand-io/deckhand/internal/models"
)

// RemoteClient drives the server-side pipeline from a client: upload
// the PDF to a temporary storage path, invoke the process-pdf function
// over HTTPS with a bearer credential, and hand back the incrementally
// delivered first slide. Remaining slides arrive as records published
// by the server's background task.
type RemoteClient struct {
	Blobs    BlobStore
	Records  RecordStore
	Endpoint string
	Token    string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// CreateDocument creates the Document record, stages the PDF and asks
// the server to process it. A failed invocation deletes the
// just-created document so the caller never sees an empty one.
func (c *RemoteClient) CreateDocument(ctx context.Context, ownerID, title string, file SourceFile) (*models.Document, error) {
	size := file.Size
	if size == 0 {
		size = int64(len(file.Data))
	}
	kind, err := Classify(file.ContentType, size, file.Data)
	if err != nil {
		return nil, err
	}
	if kind != KindPDF {
		return nil, fmt.Errorf("server-side processing accepts PDFs only: %w", ErrUnsupportedType)
	}

	doc, err := c.Records.CreateDocument(ctx, &models.Document{OwnerID: ownerID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	logCtx := slog.With("documentId", doc.ID)

	tempPath := fmt.Sprintf("temp/%s/%s.pdf", doc.ID, uuid.NewString())
	if err := c.Blobs.Upload(ctx, tempPath, file.Data, "application/pdf"); err != nil {
		c.compensate(ctx, logCtx, doc.ID)
		return nil, fmt.Errorf("failed to upload PDF: %w", err)
	}

	resp, err := c.invoke(ctx, models.ProcessPDFRequest{DocumentID: doc.ID, SourcePath: tempPath})
	if err != nil || !resp.Success {
		// The server removes the temp object itself on success; on
		// failure cleanup falls to us.
		if rmErr := c.Blobs.Remove(ctx, tempPath); rmErr != nil {
			logCtx.Warn("Failed to clean up temporary PDF.", "error", rmErr)
		}
		c.compensate(ctx, logCtx, doc.ID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to process PDF: %s", resp.Error)
	}

	doc.Slides = resp.Slides
	doc.SlideCount = resp.PageCount
	logCtx.Info("PDF accepted for processing.", "pageCount", resp.PageCount, "processedCount", resp.ProcessedCount)
	return doc, nil
}

func (c *RemoteClient) invoke(ctx context.Context, req models.ProcessPDFRequest) (*models.ProcessPDFResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Token)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke process-pdf: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthFailure
	}

	var resp models.ProcessPDFResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode process-pdf response: %w", err)
	}
	return &resp, nil
}

func (c *RemoteClient) compensate(ctx context.Context, logCtx *slog.Logger, documentID string) {
	if err := c.Records.DeleteDocument(ctx, documentID); err != nil {
		logCtx.Error("CRITICAL: Failed to delete empty document after a processing error.", "error", err)
	}
}
