package ingest

import "errors"

// Whole-ingestion failures. Per-page failures (render, optimize,
// upload, record insert) are deliberately not sentinels: they are
// logged and skipped so sibling pages keep flowing.
var (
	// ErrUnsupportedType rejects files that are neither PDFs nor images.
	ErrUnsupportedType = errors.New("please upload a PDF or image file")

	// ErrOversizeFile rejects files above the accepted size bound.
	ErrOversizeFile = errors.New("file exceeds the maximum size of 50 MB")

	// ErrMalformedDocument marks PDF bytes that cannot be parsed.
	ErrMalformedDocument = errors.New("file is not a valid PDF document")

	// ErrAuthFailure marks a server invocation without a valid credential.
	ErrAuthFailure = errors.New("not authenticated")

	// ErrNoSlides marks an ingestion where not a single page could be
	// published; the caller deletes the empty document in response.
	ErrNoSlides = errors.New("no slides could be created")
)
