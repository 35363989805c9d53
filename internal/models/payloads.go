package models

// These structs define the JSON payloads exchanged between the web
// client and the process-pdf cloud function.

// ProcessPDFRequest is the input for the process-pdf function. The PDF
// must already be uploaded to object storage at SourcePath.
type ProcessPDFRequest struct {
	DocumentID string `json:"documentId"`
	SourcePath string `json:"sourcePath"`
}

// ProcessPDFResponse is the output of the process-pdf function.
//
// On success the response carries only the first slide: the remaining
// pages are published by a detached background task and surface to the
// caller as new Slide records, observable via polling or a slide
// change subscription.
type ProcessPDFResponse struct {
	Success        bool    `json:"success"`
	Slides         []Slide `json:"slides,omitempty"`
	PageCount      int     `json:"pageCount,omitempty"`
	ProcessedCount int     `json:"processedCount,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// IntakeEvent is the payload of a storage event that triggers the
// ingest worker when a PDF lands under the intake prefix.
type IntakeEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}
