package ingest

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/deckhand-io/deckhand/internal/models"
)

// fakeBlobStore is an in-memory BlobStore recording every successful
// upload.
type fakeBlobStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	failPaths    map[string]bool
	failAll      bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		failPaths:    make(map[string]bool),
	}
}

func (f *fakeBlobStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failPaths[path] {
		return fmt.Errorf("upload of %s failed", path)
	}
	f.objects[path] = append([]byte(nil), data...)
	f.contentTypes[path] = contentType
	return nil
}

func (f *fakeBlobStore) PublicURL(path string) string {
	return "https://blobs.test/" + path
}

func (f *fakeBlobStore) Download(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s does not exist", path)
	}
	return data, nil
}

func (f *fakeBlobStore) Remove(ctx context.Context, paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		delete(f.objects, p)
		delete(f.contentTypes, p)
	}
	return nil
}

func (f *fakeBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var paths []string
	for p := range f.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeBlobStore) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

// fakeRecordStore is an in-memory RecordStore.
type fakeRecordStore struct {
	mu         sync.Mutex
	docs       map[string]models.Document
	slides     []models.Slide
	failCreate bool
	failOrders map[int]bool
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		docs:       make(map[string]models.Document),
		failOrders: make(map[int]bool),
	}
}

func (f *fakeRecordStore) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, fmt.Errorf("document insert failed")
	}
	doc.ID = uuid.NewString()
	f.docs[doc.ID] = *doc
	return doc, nil
}

func (f *fakeRecordStore) InsertSlide(ctx context.Context, slide *models.Slide) (*models.Slide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOrders[slide.Order] {
		return nil, fmt.Errorf("slide insert failed")
	}
	slide.ID = uuid.NewString()
	f.slides = append(f.slides, *slide)
	return slide, nil
}

func (f *fakeRecordStore) SetSlideCount(ctx context.Context, documentID string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[documentID]
	if !ok {
		return fmt.Errorf("document %s does not exist", documentID)
	}
	doc.SlideCount = count
	f.docs[documentID] = doc
	return nil
}

func (f *fakeRecordStore) DeleteDocument(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	kept := f.slides[:0]
	for _, s := range f.slides {
		if s.DocumentID != id {
			kept = append(kept, s)
		}
	}
	f.slides = kept
	return nil
}

func (f *fakeRecordStore) slidesFor(documentID string) []models.Slide {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Slide
	for _, s := range f.slides {
		if s.DocumentID == documentID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (f *fakeRecordStore) document(id string) (models.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	return doc, ok
}

func (f *fakeRecordStore) hasDocument(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}

// fakeRenderer serves a fixed number of synthetic pages.
type fakeRenderer struct {
	pages     int
	openErr   error
	failPages map[int]bool
}

func (f fakeRenderer) Open(data []byte) (PageSource, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSource{pages: f.pages, failPages: f.failPages}, nil
}

type fakeSource struct {
	pages     int
	failPages map[int]bool
	closed    bool
}

func (s *fakeSource) PageCount() int { return s.pages }

func (s *fakeSource) Render(page int) (image.Image, error) {
	if s.failPages[page] {
		return nil, fmt.Errorf("render of page %d failed", page)
	}
	return image.NewRGBA(image.Rect(0, 0, 40, 30)), nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}
