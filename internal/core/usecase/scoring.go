package usecase

import (
	"math"
	"sort"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

// distanceToSimilarity maps a cosine distance to a (0,1] similarity score.
// Monotonically decreasing: 0 distance maps to 1.0.
func distanceToSimilarity(d float64) float64 {
	return 1.0 / (1.0 + d)
}

// computeConfidence aggregates chunk distances into one [0,1] confidence
// value: the average of the top 3 similarities (or all, if fewer). A "best
// evidence" estimator on purpose: confidence tracks the strongest matches
// and is not diluted by the weak tail.
func computeConfidence(chunks []domain.RetrievedChunk) float64 {
	if len(chunks) == 0 {
		return 0.0
	}

	sims := make([]float64, len(chunks))
	for i, chunk := range chunks {
		sims[i] = distanceToSimilarity(chunk.Distance)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))

	top := sims
	if len(top) > 3 {
		top = top[:3]
	}

	sum := 0.0
	for _, s := range top {
		sum += s
	}
	avg := sum / float64(len(top))

	return math.Max(0.0, math.Min(1.0, avg))
}

// annotateSimilarities assigns each chunk its individual similarity score,
// rounded to 4 decimal places. Informational only; the aggregate confidence
// is computed from raw distances.
func annotateSimilarities(chunks []domain.RetrievedChunk) {
	for i := range chunks {
		chunks[i].Similarity = round4(distanceToSimilarity(chunks[i].Distance))
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
