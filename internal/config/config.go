package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	Env         string // "dev", "test" or "prod"
	LogLevel    string

	// EmbeddingDimension fixa o tamanho dos embeddings aceitos; 0 aceita qualquer tamanho.
	EmbeddingDimension int
	// SimilarityMaxRecords limita o N da comparação par a par; 0 desativa o limite.
	SimilarityMaxRecords int
	CorpusCacheSize      int

	RateLimitRPS   float64
	RateLimitBurst int

	TracingEnabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          getEnv("DATABASE_URL", "./embedsim.db"),
		Env:                  getEnv("APP_ENV", "dev"),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		EmbeddingDimension:   getEnvInt("EMBEDDING_DIMENSION", 0),
		SimilarityMaxRecords: getEnvInt("SIMILARITY_MAX_RECORDS", 1000),
		CorpusCacheSize:      getEnvInt("CORPUS_CACHE_SIZE", 128),
		RateLimitRPS:         getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", 10),
		TracingEnabled:       getEnvBool("TRACING_ENABLED", false),
	}

	if cfg.EmbeddingDimension < 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be >= 0, got %d", cfg.EmbeddingDimension)
	}
	if cfg.SimilarityMaxRecords < 0 {
		return nil, fmt.Errorf("SIMILARITY_MAX_RECORDS must be >= 0, got %d", cfg.SimilarityMaxRecords)
	}
	if cfg.CorpusCacheSize < 1 {
		return nil, fmt.Errorf("CORPUS_CACHE_SIZE must be >= 1, got %d", cfg.CorpusCacheSize)
	}

	// Validação Estrita para Produção
	if cfg.Env == "prod" {
		if _, ok := os.LookupEnv("DATABASE_URL"); !ok {
			return nil, fmt.Errorf("prod: DATABASE_URL is required")
		}
		if cfg.RateLimitRPS <= 0 {
			return nil, fmt.Errorf("prod: RATE_LIMIT_RPS must be positive")
		}
	}

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
