// Package pending persists a single dropped file across an
// authentication redirect so ingestion can resume once the user is
// signed in. One upload is held per profile; saving a new one
// overwrites any prior unconsumed record.
package pending

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/deckhand-io/deckhand/internal/ingest"
)

// MaxAge is how long a pending upload stays valid. Older records are
// treated as absent and discarded when read.
const MaxAge = time.Hour

const recordName = "pending_upload.json"

// Upload is the serialized snapshot of one dropped file.
type Upload struct {
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileSize    int64  `json:"fileSize"`
	FileDataURL string `json:"fileDataUrl"`
	Timestamp   int64  `json:"timestamp"`
}

// Store holds at most one pending upload in a profile directory.
type Store struct {
	path string

	mu        sync.Mutex
	consuming bool
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create pending upload dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, recordName)}, nil
}

// Save snapshots a file for later ingestion, replacing any existing
// pending upload.
func (s *Store) Save(f ingest.SourceFile) error {
	u := Upload{
		FileName:    f.Name,
		FileType:    f.ContentType,
		FileSize:    int64(len(f.Data)),
		FileDataURL: "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data),
		Timestamp:   time.Now().UnixMilli(),
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode pending upload: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to persist pending upload: %w", err)
	}
	return nil
}

// Get returns the pending upload, or nil when there is none. An
// expired or unreadable record is deleted as a side effect of being
// read and reported as absent.
func (s *Store) Get() (*Upload, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending upload: %w", err)
	}

	var u Upload
	if err := json.Unmarshal(data, &u); err != nil {
		slog.Warn("Discarding unreadable pending upload.", "error", err)
		return nil, s.Clear()
	}
	if time.Since(time.UnixMilli(u.Timestamp)) > MaxAge {
		slog.Info("Discarding expired pending upload.", "fileName", u.FileName)
		return nil, s.Clear()
	}
	return &u, nil
}

// Clear removes the pending upload, if any.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear pending upload: %w", err)
	}
	return nil
}

// SourceFile decodes the snapshot back into an uploadable file.
func (u *Upload) SourceFile() (ingest.SourceFile, error) {
	_, b64, found := strings.Cut(u.FileDataURL, ";base64,")
	if !found {
		return ingest.SourceFile{}, fmt.Errorf("pending upload has no base64 payload")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return ingest.SourceFile{}, fmt.Errorf("failed to decode pending upload payload: %w", err)
	}
	return ingest.SourceFile{
		Name:        u.FileName,
		ContentType: u.FileType,
		Size:        u.FileSize,
		Data:        data,
	}, nil
}

// Consume runs fn on the pending upload exactly once. The record is
// cleared after fn returns, on success and on failure alike, so a
// failing file can never loop forever. A guard flag rejects concurrent
// consumption; the second caller sees consumed=false and no error.
func (s *Store) Consume(fn func(ingest.SourceFile) error) (consumed bool, err error) {
	s.mu.Lock()
	if s.consuming {
		s.mu.Unlock()
		return false, nil
	}
	s.consuming = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.consuming = false
		s.mu.Unlock()
	}()

	u, err := s.Get()
	if err != nil || u == nil {
		return false, err
	}
	f, err := u.SourceFile()
	if err != nil {
		return false, errors.Join(err, s.Clear())
	}
	if err := fn(f); err != nil {
		return true, errors.Join(err, s.Clear())
	}
	return true, s.Clear()
}
