package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})

	SimilarityDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "similarity_computation_seconds",
		Help:    "Time taken to compute pairwise similarity for a user's records",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"status"})

	SimilarityPairs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "similarity_pairs",
		Help:    "Number of record pairs compared per request",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	SimilarityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "similarity_errors_total",
		Help: "Total number of rejected similarity computations",
	}, []string{"reason"})

	CorpusFits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corpus_fits_total",
		Help: "Total number of text corpora fitted",
	})

	CorpusCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corpus_cache_lookups_total",
		Help: "Corpus cache lookups by result",
	}, []string{"result"})

	RecordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "records_created_total",
		Help: "Total number of records created",
	})
)
