// Package similarity computes pairwise cosine similarity over embedding vectors.
//
// The computation is the naive O(N²·d) baseline: every unordered pair is
// compared exactly once, in nested-loop order. Input is validated as a whole
// before any pair is scored, so callers either get the full result set or an
// error, never a prefix.
package similarity

import (
	"math"
)

// Result is one unordered pair of input positions with I < J.
type Result struct {
	I     int     `json:"i"`
	J     int     `json:"j"`
	Score float64 `json:"score"`
}

// Cosine returns the cosine similarity of a and b.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Index: 1, Want: len(a), Got: len(b)}
	}
	na, err := norm(0, a)
	if err != nil {
		return 0, err
	}
	nb, err := norm(1, b)
	if err != nil {
		return 0, err
	}
	return cosine(a, b, na, nb), nil
}

// Pairs returns the cosine similarity of every pair (i, j), 0 <= i < j < N,
// ordered lexicographically by (i, j). N <= 1 yields an empty slice.
func Pairs(embeddings [][]float64) ([]Result, error) {
	norms, err := validate(embeddings)
	if err != nil {
		return nil, err
	}

	n := len(embeddings)
	results := make([]Result, 0, PairCount(n))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			results = append(results, Result{
				I:     i,
				J:     j,
				Score: cosine(embeddings[i], embeddings[j], norms[i], norms[j]),
			})
		}
	}
	return results, nil
}

// PairCount is N*(N-1)/2.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

func validate(embeddings [][]float64) ([]scaledNorm, error) {
	norms := make([]scaledNorm, len(embeddings))
	if len(embeddings) == 0 {
		return norms, nil
	}

	dim := len(embeddings[0])
	for i, v := range embeddings {
		if len(v) != dim {
			return nil, &DimensionMismatchError{Index: i, Want: dim, Got: len(v)}
		}
		nv, err := norm(i, v)
		if err != nil {
			return nil, err
		}
		norms[i] = nv
	}
	return norms, nil
}

// scaledNorm is the Euclidean norm of v/scale, where scale is max|v_k|.
// Components of v/scale lie in [-1, 1], so squaring neither overflows nor
// underflows for any finite nonzero vector.
type scaledNorm struct {
	scale float64
	norm  float64
}

func norm(index int, v []float64) (scaledNorm, error) {
	if len(v) == 0 {
		return scaledNorm{}, &InvalidVectorError{Index: index, Reason: "empty vector"}
	}

	var m float64
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return scaledNorm{}, &InvalidVectorError{Index: index, Reason: "non-finite component"}
		}
		if ax := math.Abs(x); ax > m {
			m = ax
		}
	}
	if m == 0 {
		return scaledNorm{}, &InvalidVectorError{Index: index, Reason: "zero norm"}
	}

	var sum float64
	for _, x := range v {
		y := x / m
		sum += y * y
	}
	return scaledNorm{scale: m, norm: math.Sqrt(sum)}, nil
}

func cosine(a, b []float64, na, nb scaledNorm) float64 {
	var dot float64
	for k := range a {
		dot += (a[k] / na.scale) * (b[k] / nb.scale)
	}

	s := dot / na.norm / nb.norm
	// rounding can push parallel vectors just past 1
	return math.Max(-1, math.Min(1, s))
}
