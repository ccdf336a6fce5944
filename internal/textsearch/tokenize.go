package textsearch

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tiktoken-go/tokenizer"
)

// Tokenizer splits text into terms.
type Tokenizer interface {
	Terms(text string) ([]string, error)
}

// BPETokenizer uses a tiktoken encoding and treats each BPE piece as a term.
// Pieces are lowercased with surrounding whitespace removed; pieces without a
// letter or digit are dropped.
type BPETokenizer struct {
	mu    sync.Mutex
	codec tokenizer.Codec
}

func NewBPETokenizer(encoding tokenizer.Encoding) (*BPETokenizer, error) {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encoding, err)
	}
	return &BPETokenizer{codec: codec}, nil
}

func (t *BPETokenizer) Terms(text string) ([]string, error) {
	t.mu.Lock()
	_, pieces, err := t.codec.Encode(strings.ToLower(text))
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}

	terms := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" || !strings.ContainsFunc(p, isWordRune) {
			continue
		}
		terms = append(terms, p)
	}
	return terms, nil
}

// WordTokenizer splits on anything that is not a letter or digit.
type WordTokenizer struct{}

func (WordTokenizer) Terms(text string) ([]string, error) {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	}), nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
