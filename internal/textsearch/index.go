// Package textsearch fits a TF-IDF model over a corpus of documents and
// answers similarity queries against it.
//
// Fitting is a separate stage from querying: Fit builds an immutable Index
// once, and the Index is then queried any number of times, concurrently.
package textsearch

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/PauloHFS/embedsim/internal/similarity"
	"github.com/tiktoken-go/tokenizer"
)

type Document struct {
	ID   int64
	Text string
}

type Hit struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

type options struct {
	tokenizer Tokenizer
}

type Option func(*options)

// WithTokenizer replaces the default cl100k_base BPE tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(o *options) {
		o.tokenizer = t
	}
}

// Index is a fitted corpus. It is never mutated after Fit returns.
type Index struct {
	tokenizer Tokenizer
	vocab     map[string]int
	idf       []float64
	ids       []int64
	vectors   [][]float64 // L2-normalised, nil for documents with no known terms
}

// Fit tokenizes docs, learns the vocabulary and inverse document frequencies,
// and vectorizes every document. An empty corpus yields an empty index.
func Fit(docs []Document, opts ...Option) (*Index, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tokenizer == nil {
		t, err := NewBPETokenizer(tokenizer.Cl100kBase)
		if err != nil {
			return nil, err
		}
		o.tokenizer = t
	}

	idx := &Index{
		tokenizer: o.tokenizer,
		vocab:     make(map[string]int),
		ids:       make([]int64, len(docs)),
		vectors:   make([][]float64, len(docs)),
	}

	termsPerDoc := make([][]string, len(docs))
	var df []int
	for i, d := range docs {
		terms, err := o.tokenizer.Terms(d.Text)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", d.ID, err)
		}
		termsPerDoc[i] = terms
		idx.ids[i] = d.ID

		seen := make(map[int]bool, len(terms))
		for _, term := range terms {
			col, ok := idx.vocab[term]
			if !ok {
				col = len(idx.vocab)
				idx.vocab[term] = col
				df = append(df, 0)
			}
			if !seen[col] {
				seen[col] = true
				df[col]++
			}
		}
	}

	// smoothed idf: ln((1+n)/(1+df)) + 1
	n := float64(len(docs))
	idx.idf = make([]float64, len(df))
	for col, f := range df {
		idx.idf[col] = math.Log((1+n)/(1+float64(f))) + 1
	}

	for i, terms := range termsPerDoc {
		idx.vectors[i] = idx.weigh(terms)
	}
	return idx, nil
}

func (idx *Index) Len() int {
	return len(idx.ids)
}

func (idx *Index) VocabularySize() int {
	return len(idx.vocab)
}

// Vector projects text onto the fitted vocabulary. Terms unseen during Fit
// are ignored; nil means no term of text is known.
func (idx *Index) Vector(text string) ([]float64, error) {
	terms, err := idx.tokenizer.Terms(text)
	if err != nil {
		return nil, err
	}
	return idx.weigh(terms), nil
}

// Search returns up to k documents ranked by cosine similarity to query,
// best first. Documents sharing no term with the query are left out.
// k <= 0 returns every match.
func (idx *Index) Search(query string, k int) ([]Hit, error) {
	q, err := idx.Vector(query)
	if err != nil {
		return nil, err
	}

	hits := []Hit{}
	if q == nil {
		return hits, nil
	}

	for i, v := range idx.vectors {
		if v == nil {
			continue
		}
		score, err := similarity.Cosine(q, v)
		if err != nil {
			if errors.Is(err, similarity.ErrInvalidVector) {
				continue
			}
			return nil, err
		}
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{ID: idx.ids[i], Score: score})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (idx *Index) weigh(terms []string) []float64 {
	if len(idx.vocab) == 0 {
		return nil
	}

	v := make([]float64, len(idx.vocab))
	known := false
	for _, term := range terms {
		if col, ok := idx.vocab[term]; ok {
			v[col]++
			known = true
		}
	}
	if !known {
		return nil
	}

	var sum float64
	for col := range v {
		v[col] *= idx.idf[col]
		sum += v[col] * v[col]
	}
	norm := math.Sqrt(sum)
	for col := range v {
		v[col] /= norm
	}
	return v
}
