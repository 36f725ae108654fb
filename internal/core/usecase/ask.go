package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
	"github.com/schemegpt/scheme-assistant/internal/core/ports"
)

// AskUseCase is the retrieval-augmented answering pipeline: scheme detection,
// query enrichment, vector retrieval, scheme filtering, confidence scoring,
// context assembly and answer generation.
type AskUseCase struct {
	schemes   *domain.SchemeTable
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	generator ports.AnswerGenerator
	topK      int
}

func NewAskUseCase(
	schemes *domain.SchemeTable,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	generator ports.AnswerGenerator,
	topK int,
) (*AskUseCase, error) {
	if topK <= 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "build ask pipeline", fmt.Errorf("top-k must be positive, got %d", topK))
	}
	return &AskUseCase{
		schemes:   schemes,
		embedder:  embedder,
		vectorDB:  vectorDB,
		generator: generator,
		topK:      topK,
	}, nil
}

func (uc *AskUseCase) Ask(ctx context.Context, question string) (*domain.AnswerPackage, error) {
	schemeKey, detected := uc.schemes.Detect(question)

	enriched := question
	if detected {
		enriched = uc.schemes.Enrich(question, schemeKey)
	}

	chunks, err := uc.retrieve(ctx, enriched)
	if err != nil {
		return nil, err
	}

	if detected {
		chunks = filterByScheme(chunks, schemeKey)
	}

	annotateSimilarities(chunks)
	confidence := computeConfidence(chunks)

	prompt := buildGroundedPrompt(
		question,
		uc.resolveDisplayName(schemeKey, detected, chunks),
		buildContext(chunks),
	)

	answerText, err := uc.generator.GenerateFromPrompt(ctx, prompt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}

	return &domain.AnswerPackage{
		Question:       question,
		Answer:         strings.TrimSpace(answerText),
		Sources:        sourceRefs(chunks),
		DetectedScheme: schemeKey,
		Confidence:     round4(confidence),
	}, nil
}

func (uc *AskUseCase) retrieve(ctx context.Context, enrichedQuery string) ([]domain.RetrievedChunk, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, enrichedQuery)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "embed query", err)
	}

	chunks, err := uc.vectorDB.Search(ctx, queryVector, uc.topK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "search vector index", err)
	}
	if len(chunks) > uc.topK {
		chunks = chunks[:uc.topK]
	}
	return chunks, nil
}

// resolveDisplayName prefers the detected scheme's display name, then a
// best-effort match on the top-ranked source, and reports nothing (rendered
// as "Unknown / Mixed") otherwise.
func (uc *AskUseCase) resolveDisplayName(schemeKey string, detected bool, chunks []domain.RetrievedChunk) string {
	if detected {
		if name, ok := uc.schemes.DisplayName(schemeKey); ok {
			return name
		}
	}
	if len(chunks) > 0 {
		if key, ok := uc.schemes.FromSource(chunks[0].Source); ok {
			if name, ok := uc.schemes.DisplayName(key); ok {
				return name
			}
		}
	}
	return ""
}

func sourceRefs(chunks []domain.RetrievedChunk) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(chunks))
	for _, chunk := range chunks {
		refs = append(refs, domain.SourceRef{
			Source:          chunk.Source,
			ChunkIndex:      chunk.ChunkIndex,
			SimilarityScore: chunk.Similarity,
		})
	}
	return refs
}
