package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

type repoFake struct {
	created   *domain.Document
	statuses  []domain.DocumentStatus
	lastError string
	doc       *domain.Document
	scheme    string
	pages     int
	chunks    int
	createErr error
	getErr    error
	saveErr   error
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = doc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New(id))
}

func (f *repoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statuses = append(f.statuses, status)
	f.lastError = errMessage
	return nil
}

func (f *repoFake) SaveProcessingResult(_ context.Context, _ string, scheme string, pages, chunks int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.scheme = scheme
	f.pages = pages
	f.chunks = chunks
	return nil
}

type storageFake struct {
	saved map[string][]byte
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, _ := io.ReadAll(data)
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresPersistsAndPublishes(t *testing.T) {
	repo := &repoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "PMJDY Guidelines.pdf", "application/pdf", bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if doc.Status != domain.StatusUploaded {
		t.Fatalf("status = %s, want uploaded", doc.Status)
	}
	if doc.Source != "PMJDY Guidelines" {
		t.Fatalf("source = %q, want filename without extension", doc.Source)
	}
	if repo.created == nil {
		t.Fatalf("document metadata not persisted")
	}
	if len(storage.saved) != 1 {
		t.Fatalf("file not written to object storage")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("ingestion event not published for %s", doc.ID)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	uc := NewIngestDocumentUseCase(&repoFake{}, &storageFake{}, &queueFake{})
	_, err := uc.Upload(context.Background(), "notes.txt", "text/plain", bytes.NewBufferString("hello"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadStorageFailurePropagates(t *testing.T) {
	uc := NewIngestDocumentUseCase(&repoFake{}, &storageFake{err: errors.New("disk full")}, &queueFake{})
	_, err := uc.Upload(context.Background(), "a.pdf", "application/pdf", bytes.NewBufferString("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"PMJDY Guidelines.pdf":  "PMJDY_Guidelines.pdf",
		"../../etc/passwd.pdf":  "passwd.pdf",
		"weird$chars(1).pdf":    "weird_chars_1_.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
