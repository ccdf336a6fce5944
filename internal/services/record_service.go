package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PauloHFS/embedsim/internal/config"
	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/logging"
	"github.com/PauloHFS/embedsim/internal/metrics"
	"github.com/PauloHFS/embedsim/internal/similarity"
	"github.com/PauloHFS/embedsim/internal/telemetry"
	"github.com/PauloHFS/embedsim/internal/textsearch"
	"github.com/PauloHFS/embedsim/internal/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type RecordService struct {
	pool      *db.DualPool
	users     *UserService
	engine    *similarity.Engine
	corpora   *CorpusCache
	dimension int
}

func NewRecordService(pool *db.DualPool, users *UserService, corpora *CorpusCache, cfg *config.Config) *RecordService {
	return &RecordService{
		pool:      pool,
		users:     users,
		engine:    similarity.NewEngine(cfg.SimilarityMaxRecords),
		corpora:   corpora,
		dimension: cfg.EmbeddingDimension,
	}
}

type CreateRecordInput struct {
	UserID    int64
	Title     string
	Content   string
	Embedding []float64
}

func (s *RecordService) CreateRecord(ctx context.Context, input CreateRecordInput) (db.Record, error) {
	if _, err := s.users.GetUser(ctx, input.UserID); err != nil {
		return db.Record{}, err
	}

	if err := validator.ValidateEmbedding(input.Embedding, s.dimension); err != nil {
		return db.Record{}, fmt.Errorf("%w: %v", ErrInvalidEmbedding, err)
	}

	var record db.Record
	err := s.pool.WriteTx(ctx, func(q *db.Queries) error {
		// sem dimensão configurada, o primeiro registro do usuário fixa a dimensão
		if s.dimension <= 0 {
			dim, err := q.GetUserEmbeddingDimension(ctx, input.UserID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
			case err != nil:
				return fmt.Errorf("failed to load embedding dimension: %w", err)
			case int64(len(input.Embedding)) != dim:
				return fmt.Errorf("%w: embedding has dimension %d, user's records have %d",
					ErrInvalidEmbedding, len(input.Embedding), dim)
			}
		}

		id, err := q.CreateRecord(ctx, db.CreateRecordParams{
			UserID:    input.UserID,
			Title:     validator.SanitizeText(input.Title),
			Content:   validator.SanitizeText(input.Content),
			Embedding: db.Vector(input.Embedding),
		})
		if err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}

		record, err = q.GetRecord(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load created record: %w", err)
		}
		return nil
	})
	if err != nil {
		return db.Record{}, err
	}

	s.corpora.Invalidate(input.UserID)
	metrics.RecordsCreated.Inc()
	logging.AddToEvent(ctx,
		slog.Int64("record_id", record.ID),
		slog.Int("embedding_dim", len(record.Embedding)),
	)
	return record, nil
}

func (s *RecordService) ListRecords(ctx context.Context, userID int64, paging db.PagingParams) (db.PagedResult[db.Record], error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return db.PagedResult[db.Record]{}, err
	}

	q := s.pool.Queries()
	total, err := q.CountRecordsByUser(ctx, userID)
	if err != nil {
		return db.PagedResult[db.Record]{}, fmt.Errorf("failed to count records: %w", err)
	}

	items, err := q.ListRecordsByUserPaged(ctx, db.ListRecordsByUserPagedParams{
		UserID: userID,
		Limit:  int64(paging.Limit()),
		Offset: int64(paging.Offset()),
	})
	if err != nil {
		return db.PagedResult[db.Record]{}, fmt.Errorf("failed to list records: %w", err)
	}

	return db.NewPagedResult(items, int(total), paging), nil
}

// SimilarPair is a similarity.Result annotated with the ids of the compared records.
type SimilarPair struct {
	I       int     `json:"i"`
	J       int     `json:"j"`
	RecordI int64   `json:"record_i"`
	RecordJ int64   `json:"record_j"`
	Score   float64 `json:"score"`
}

// SimilarRecords compares every pair of the user's records, ordered by record id.
func (s *RecordService) SimilarRecords(ctx context.Context, userID int64) ([]SimilarPair, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "records.similar")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	q := s.pool.Queries()
	if limit := s.engine.MaxVectors; limit > 0 {
		count, err := q.CountRecordsByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count records: %w", err)
		}
		if count > int64(limit) {
			err := &similarity.TooManyVectorsError{Count: int(count), Limit: limit}
			metrics.SimilarityErrors.WithLabelValues(errorReason(err)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "similarity rejected")
			return nil, fmt.Errorf("user %d: %w", userID, err)
		}
	}

	records, err := q.ListRecordsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	embeddings := make([][]float64, len(records))
	for i, r := range records {
		embeddings[i] = r.Embedding
	}

	start := time.Now()
	results, err := s.engine.Pairs(embeddings)
	if err != nil {
		metrics.SimilarityDuration.WithLabelValues("rejected").Observe(time.Since(start).Seconds())
		metrics.SimilarityErrors.WithLabelValues(errorReason(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "similarity rejected")
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	elapsed := time.Since(start)

	metrics.SimilarityDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
	metrics.SimilarityPairs.Observe(float64(len(results)))
	span.SetAttributes(
		attribute.Int("records.count", len(records)),
		attribute.Int("pairs.count", len(results)),
	)
	logging.AddToEvent(ctx,
		slog.Int("records_count", len(records)),
		slog.Int("pairs_count", len(results)),
		slog.Float64("similarity_ms", float64(elapsed.Nanoseconds())/1e6),
	)

	pairs := make([]SimilarPair, len(results))
	for k, r := range results {
		pairs[k] = SimilarPair{
			I:       r.I,
			J:       r.J,
			RecordI: records[r.I].ID,
			RecordJ: records[r.J].ID,
			Score:   r.Score,
		}
	}
	return pairs, nil
}

// SearchRecords ranks the user's records by text similarity to query.
func (s *RecordService) SearchRecords(ctx context.Context, userID int64, query string, k int) ([]textsearch.Hit, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "records.search")
	defer span.End()

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	idx, err := s.corpora.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	hits, err := idx.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search corpus: %w", err)
	}

	logging.AddToEvent(ctx,
		slog.Int("corpus_size", idx.Len()),
		slog.Int("hits", len(hits)),
	)
	return hits, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, similarity.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, similarity.ErrInvalidVector):
		return "invalid_vector"
	case errors.Is(err, similarity.ErrTooManyVectors):
		return "too_many_vectors"
	default:
		return "unknown"
	}
}
