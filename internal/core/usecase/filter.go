package usecase

import (
	"strings"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

// filterByScheme keeps only chunks whose normalized source name contains the
// detected scheme key. Fail-open: when filtering would discard every chunk,
// the original result set is returned instead, because imperfect context
// beats empty context. With no detected scheme the input passes through
// untouched.
func filterByScheme(chunks []domain.RetrievedChunk, schemeKey string) []domain.RetrievedChunk {
	if schemeKey == "" || len(chunks) == 0 {
		return chunks
	}

	filtered := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.Contains(domain.NormalizeSource(chunk.Source), schemeKey) {
			filtered = append(filtered, chunk)
		}
	}

	if len(filtered) == 0 {
		return chunks
	}
	return filtered
}
