package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

type extractorFake struct {
	text  string
	pages int
	err   error
}

func (f *extractorFake) Extract(_ context.Context, doc *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	doc.Pages = f.pages
	return f.text, nil
}

type chunkerFake struct{ chunks []string }

func (f *chunkerFake) Split(string) []string { return f.chunks }

type embedderFake struct {
	embedded [][]string
	err      error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embedded = append(f.embedded, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0.1}, nil
}

type vectorIndexFake struct {
	indexedDoc    *domain.Document
	indexedChunks []string
	err           error
}

func (f *vectorIndexFake) IndexChunks(_ context.Context, doc *domain.Document, chunks []string, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.indexedDoc = doc
	f.indexedChunks = chunks
	return nil
}

func (f *vectorIndexFake) Search(context.Context, []float32, int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func newProcessFixture(repo *repoFake, extractor *extractorFake, chunker *chunkerFake, embedder *embedderFake, vector *vectorIndexFake) *ProcessDocumentUseCase {
	return NewProcessDocumentUseCase(repo, extractor, chunker, embedder, vector, domain.DefaultSchemeTable())
}

func TestProcessByIDHappyPath(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Source: "pmjdy_guidelines"}}
	extractor := &extractorFake{text: "scheme text", pages: 7}
	chunker := &chunkerFake{chunks: []string{"a", "b"}}
	embedder := &embedderFake{}
	vector := &vectorIndexFake{}
	uc := newProcessFixture(repo, extractor, chunker, embedder, vector)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if vector.indexedDoc == nil || vector.indexedDoc.Scheme != "pmjdy" {
		t.Fatalf("expected scheme derived from source, got %+v", vector.indexedDoc)
	}
	if len(vector.indexedChunks) != 2 {
		t.Fatalf("indexed %d chunks, want 2", len(vector.indexedChunks))
	}
	if repo.scheme != "pmjdy" || repo.pages != 7 || repo.chunks != 2 {
		t.Fatalf("processing result not saved: scheme=%q pages=%d chunks=%d", repo.scheme, repo.pages, repo.chunks)
	}
	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusReady {
		t.Fatalf("final status = %s, want ready", last)
	}
}

func TestProcessByIDMarksFailedOnExtractionError(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Source: "x"}}
	uc := newProcessFixture(repo, &extractorFake{err: errors.New("corrupt pdf")}, &chunkerFake{}, &embedderFake{}, &vectorIndexFake{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusFailed {
		t.Fatalf("final status = %s, want failed", last)
	}
	if repo.lastError == "" {
		t.Fatalf("failure reason not recorded")
	}
}

func TestProcessByIDEmptyTextIsInvalidInput(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Source: "x"}}
	uc := newProcessFixture(repo, &extractorFake{text: ""}, &chunkerFake{}, &embedderFake{}, &vectorIndexFake{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessByIDZeroChunksIsInvalidInput(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Source: "x"}}
	uc := newProcessFixture(repo, &extractorFake{text: "text"}, &chunkerFake{chunks: nil}, &embedderFake{}, &vectorIndexFake{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessByIDUnknownSchemeSourceStillIndexes(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Source: "misc_circular"}}
	vector := &vectorIndexFake{}
	uc := newProcessFixture(repo, &extractorFake{text: "text"}, &chunkerFake{chunks: []string{"a"}}, &embedderFake{}, vector)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if vector.indexedDoc.Scheme != "" {
		t.Fatalf("unexpected scheme %q for unknown source", vector.indexedDoc.Scheme)
	}
}
