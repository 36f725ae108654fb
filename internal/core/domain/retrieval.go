package domain

// RetrievedChunk is one passage returned by the vector index for a single
// question. Text, source metadata and distance travel together in one record
// so filtering can never misalign them. Distance is the raw cosine distance
// from the index (ascending = better); Similarity is assigned during scoring.
type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	Scheme     string  `json:"scheme,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity_score"`
}

// SourceRef is the per-chunk provenance surfaced to callers in an
// AnswerPackage. SimilarityScore is rounded to 4 decimal places.
type SourceRef struct {
	Source          string  `json:"source"`
	ChunkIndex      int     `json:"chunk_index"`
	SimilarityScore float64 `json:"similarity_score"`
}

// AnswerPackage is the sole externally visible output of the ask pipeline.
// Confidence is a per-request value in [0,1] and is not comparable across
// requests. DetectedScheme is empty when no scheme keyword matched.
type AnswerPackage struct {
	Question       string      `json:"question"`
	Answer         string      `json:"answer"`
	Sources        []SourceRef `json:"sources"`
	DetectedScheme string      `json:"detected_scheme,omitempty"`
	Confidence     float64     `json:"confidence"`
}
