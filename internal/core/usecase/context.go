package usecase

import (
	"fmt"
	"strings"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

const contextSeparator = "\n---\n"

// RefusalSentence is the exact sentence the generator is instructed to emit
// when the retrieved context does not contain the answer. Consumers pattern
// match on it, so the wording is a contract.
const RefusalSentence = "The information is not available in the provided documents."

// buildContext renders retrieved chunks into the context block handed to the
// generator. Chunk order is preserved as retrieved/filtered. Deterministic
// for identical inputs; zero chunks yield an empty string.
func buildContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, fmt.Sprintf(
			"Source: %s (chunk %d)\n%s\n",
			chunk.Source,
			chunk.ChunkIndex,
			strings.TrimSpace(chunk.Text),
		))
	}
	return strings.Join(parts, contextSeparator)
}

// buildGroundedPrompt renders the fixed answer-generation prompt. The
// grounding rules are static text: context-only answers, conversational tone,
// summary then bullet points, and the exact refusal sentence when the context
// has no answer.
func buildGroundedPrompt(question, schemeDisplayName, context string) string {
	if schemeDisplayName == "" {
		schemeDisplayName = "Unknown / Mixed"
	}

	return fmt.Sprintf(`You are a friendly assistant that explains Indian government welfare schemes.

USER QUESTION:
%s

DETECTED SCHEME (if any): %s

You are given CONTEXT from official scheme documents. Follow these rules:

1. Use ONLY the facts from the CONTEXT. Do NOT guess or add outside knowledge.
2. Answer in simple, conversational English, like you're explaining to a friend.
3. Start with a short 2-3 line summary.
4. Then give clear bullet points for key eligibility / benefits / rules.
5. If the answer is not present in the context, reply exactly:
   "%s"

CONTEXT:
%s

Now write a helpful, conversational answer based ONLY on the context:
`, question, schemeDisplayName, RefusalSentence, context)
}
