package ports

import (
	"context"
	"io"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// QuestionAnswerer is the inbound contract for the RAG ask pipeline.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*domain.AnswerPackage, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
