package textsearch

import (
	"math"
	"testing"

	"github.com/tiktoken-go/tokenizer"
)

func corpus() []Document {
	return []Document{
		{ID: 10, Text: "Go channels and goroutines"},
		{ID: 11, Text: "SQLite write ahead logging"},
		{ID: 12, Text: "goroutines leak when channels block"},
		{ID: 13, Text: ""},
	}
}

func TestFit(t *testing.T) {
	idx, err := Fit(corpus(), WithTokenizer(WordTokenizer{}))
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if idx.Len() != 4 {
		t.Errorf("Len() = %d, want 4", idx.Len())
	}
	// go channels and goroutines sqlite write ahead logging leak when block
	if idx.VocabularySize() != 11 {
		t.Errorf("VocabularySize() = %d, want 11", idx.VocabularySize())
	}

	for i, v := range idx.vectors {
		if v == nil {
			continue
		}
		var sum float64
		for _, x := range v {
			sum += x * x
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("document %d vector not normalised: |v|^2 = %v", i, sum)
		}
	}
	if idx.vectors[3] != nil {
		t.Error("empty document should have no vector")
	}
}

func TestFitEmptyCorpus(t *testing.T) {
	idx, err := Fit(nil, WithTokenizer(WordTokenizer{}))
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	hits, err := idx.Search("anything", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
}

func TestSearch(t *testing.T) {
	idx, err := Fit(corpus(), WithTokenizer(WordTokenizer{}))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		query   string
		k       int
		wantIDs []int64
	}{
		{"shared terms rank both", "goroutines channels", 0, []int64{10, 12}},
		{"limit applied", "goroutines channels", 1, []int64{10}},
		{"single match", "sqlite", 5, []int64{11}},
		{"unknown terms", "kubernetes", 5, []int64{}},
		{"empty query", "", 5, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(tt.query, tt.k)
			if err != nil {
				t.Fatal(err)
			}
			if len(hits) != len(tt.wantIDs) {
				t.Fatalf("got %d hits (%v), want %d", len(hits), hits, len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if hits[i].ID != id {
					t.Errorf("hit %d = %d, want %d", i, hits[i].ID, id)
				}
			}
			for i := 1; i < len(hits); i++ {
				if hits[i].Score > hits[i-1].Score {
					t.Errorf("hits not sorted: %v", hits)
				}
			}
		})
	}
}

func TestBPETokenizer(t *testing.T) {
	tok, err := NewBPETokenizer(tokenizer.Cl100kBase)
	if err != nil {
		t.Fatalf("NewBPETokenizer() error = %v", err)
	}

	terms, err := tok.Terms("Hello, World!")
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) == 0 {
		t.Fatal("expected terms")
	}
	for _, term := range terms {
		if term == "," || term == "!" {
			t.Errorf("punctuation piece %q should be dropped", term)
		}
	}

	idx, err := Fit([]Document{{ID: 1, Text: "hello world"}, {ID: 2, Text: "goodbye moon"}}, WithTokenizer(tok))
	if err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search("Hello", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Errorf("expected document 1, got %v", hits)
	}
}
