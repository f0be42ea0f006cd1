package similarity

import (
	"math"

	"github.com/wirkancil/markintel/pkg/errors"
)

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors.  Vectors of different dimensions are a hard error
// (ErrCodeDimensionMismatch): silently comparing them would corrupt the
// semantic ranking.  A zero-magnitude vector scores 0 against anything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Newf(errors.ErrCodeDimensionMismatch,
			"embedding dimensions differ: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New(errors.ErrCodeDimensionMismatch, "empty embedding vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
