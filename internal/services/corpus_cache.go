package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/metrics"
	"github.com/PauloHFS/embedsim/internal/textsearch"
	lru "github.com/hashicorp/golang-lru/v2"
)

type corpusEntry struct {
	index   *textsearch.Index
	records int64
}

// CorpusCache keeps one fitted text index per user. Records are append-only,
// so an entry is stale exactly when the user's record count has moved.
type CorpusCache struct {
	queries   *db.Queries
	tokenizer textsearch.Tokenizer
	cache     *lru.Cache[int64, corpusEntry]
}

func NewCorpusCache(queries *db.Queries, tokenizer textsearch.Tokenizer, size int) (*CorpusCache, error) {
	cache, err := lru.New[int64, corpusEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus cache: %w", err)
	}
	return &CorpusCache{
		queries:   queries,
		tokenizer: tokenizer,
		cache:     cache,
	}, nil
}

func (c *CorpusCache) Get(ctx context.Context, userID int64) (*textsearch.Index, error) {
	count, err := c.queries.CountRecordsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	if entry, ok := c.cache.Get(userID); ok && entry.records == count {
		metrics.CorpusCacheLookups.WithLabelValues("hit").Inc()
		return entry.index, nil
	}
	metrics.CorpusCacheLookups.WithLabelValues("miss").Inc()

	records, err := c.queries.ListRecordsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	docs := make([]textsearch.Document, len(records))
	for i, r := range records {
		docs[i] = textsearch.Document{ID: r.ID, Text: documentText(r)}
	}

	idx, err := textsearch.Fit(docs, textsearch.WithTokenizer(c.tokenizer))
	if err != nil {
		return nil, fmt.Errorf("failed to fit corpus: %w", err)
	}
	metrics.CorpusFits.Inc()

	c.cache.Add(userID, corpusEntry{index: idx, records: int64(len(records))})
	return idx, nil
}

func (c *CorpusCache) Invalidate(userID int64) {
	c.cache.Remove(userID)
}

func (c *CorpusCache) Len() int {
	return c.cache.Len()
}

func documentText(r db.Record) string {
	return strings.TrimSpace(r.Title + "\n" + r.Content)
}
