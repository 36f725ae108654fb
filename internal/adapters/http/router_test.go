package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/schemegpt/scheme-assistant/internal/config"
	"github.com/schemegpt/scheme-assistant/internal/core/domain"
	"github.com/schemegpt/scheme-assistant/internal/core/ports"
)

type ingestSuccessFake struct{}

func (f ingestSuccessFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		Source:      strings.TrimSuffix(filename, ".pdf"),
		MimeType:    mimeType,
		StoragePath: "doc-1_" + filename,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type ingestErrFake struct{ err error }

func (f ingestErrFake) Upload(context.Context, string, string, io.Reader) (*domain.Document, error) {
	return nil, f.err
}

type askFake struct {
	answer *domain.AnswerPackage
	err    error
}

func (f askFake) Ask(context.Context, string) (*domain.AnswerPackage, error) {
	return f.answer, f.err
}

type readerFake struct {
	doc *domain.Document
	err error
}

func (f readerFake) GetByID(context.Context, string) (*domain.Document, error) {
	return f.doc, f.err
}

func newTestHandler(cfg config.Config, ingestor ingestOpt, answerer askFake, reader readerFake) http.Handler {
	var ing ports.DocumentIngestor = ingestSuccessFake{}
	if ingestor.err != nil {
		ing = ingestErrFake{err: ingestor.err}
	}
	return NewRouter(cfg, ing, answerer, reader, nil, "api").Handler()
}

type ingestOpt struct{ err error }

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{}, readerFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header to be set")
	}
}

func TestUploadDocumentSuccess(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{}, readerFake{})

	body, contentType := multipartBody(t, "pmjdy.pdf", "%PDF-1.4 fake")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.ID != "doc-1" || doc.Source != "pmjdy" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestUploadDocumentMissingFileField(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{}, readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("not multipart"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentInvalidInputMapsTo400(t *testing.T) {
	uploadErr := domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("only .pdf files are accepted"))
	handler := newTestHandler(config.Config{}, ingestOpt{err: uploadErr}, askFake{}, readerFake{})

	body, contentType := multipartBody(t, "notes.txt", "plain text")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	notFound := domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no row"))
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{}, readerFake{err: notFound})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestAskReturnsAnswerPackage(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{
		answer: &domain.AnswerPackage{
			Question: "What is the overdraft limit under Jan Dhan?",
			Answer:   "The overdraft facility is up to Rs 10,000.",
			Sources: []domain.SourceRef{
				{Source: "pmjdy", ChunkIndex: 3, SimilarityScore: 0.9091},
			},
			DetectedScheme: "pmjdy",
			Confidence:     0.9091,
		},
	}, readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/ask",
		strings.NewReader(`{"question":"What is the overdraft limit under Jan Dhan?"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["detected_scheme"] != "pmjdy" {
		t.Fatalf("detected_scheme = %v, want pmjdy", resp["detected_scheme"])
	}
	if resp["confidence"] != 0.9091 {
		t.Fatalf("confidence = %v, want 0.9091", resp["confidence"])
	}
}

func TestAskOmitsDetectedSchemeWhenEmpty(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{
		answer: &domain.AnswerPackage{
			Question:   "What is the capital of France?",
			Answer:     "The information is not available in the provided documents.",
			Sources:    []domain.SourceRef{},
			Confidence: 0,
		},
	}, readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/ask",
		strings.NewReader(`{"question":"What is the capital of France?"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, present := resp["detected_scheme"]; present {
		t.Fatalf("detected_scheme should be omitted when no scheme matched, got %v", resp["detected_scheme"])
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{}, readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/ask", strings.NewReader(`{"question":"   "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskTemporaryErrorMapsTo503(t *testing.T) {
	askErr := domain.WrapError(domain.ErrTemporary, "ask", errors.New("ollama unavailable"))
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{err: askErr}, readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/ask", strings.NewReader(`{"question":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestAskGenerationErrorMapsTo500(t *testing.T) {
	askErr := domain.WrapError(domain.ErrGeneration, "ask", errors.New("model refused"))
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{err: askErr}, readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/ask", strings.NewReader(`{"question":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestMethodNotAllowedOnAsk(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestOpt{}, askFake{}, readerFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/rag/ask", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
