package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/logging"
	"github.com/PauloHFS/embedsim/internal/middleware"
	"github.com/PauloHFS/embedsim/internal/services"
	"github.com/PauloHFS/embedsim/internal/telemetry"
	"github.com/PauloHFS/embedsim/internal/textsearch"
	"github.com/PauloHFS/embedsim/internal/web"
	"github.com/tiktoken-go/tokenizer"
)

func RunServer() {
	cfg, pool, err := openPool()
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	logging.Init(cfg.LogLevel)
	logger := logging.Get()

	if err := db.RunMigrations(context.Background(), pool.Write); err != nil {
		logger.Error("failed to run migrations", "error", err)
		panic(err)
	}

	if cfg.TracingEnabled {
		version := os.Getenv("VERSION")
		if version == "" {
			version = "dev"
		}
		shutdownTracing, err := telemetry.Setup(os.Stderr, version)
		if err != nil {
			logger.Error("failed to set up tracing", "error", err)
			panic(err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("failed to flush traces", "error", err)
			}
		}()
	}

	// Tokenizer carregado uma vez; cada corpus é ajustado sob demanda e cacheado
	bpe, err := textsearch.NewBPETokenizer(tokenizer.Cl100kBase)
	if err != nil {
		logger.Error("failed to load tokenizer", "error", err)
		panic(err)
	}
	corpora, err := services.NewCorpusCache(pool.Queries(), bpe, cfg.CorpusCacheSize)
	if err != nil {
		logger.Error("failed to create corpus cache", "error", err)
		panic(err)
	}

	users := services.NewUserService(pool)
	records := services.NewRecordService(pool, users, corpora, cfg)

	limiterCtx, cancelLimiter := context.WithCancel(context.Background())
	defer cancelLimiter()
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(limiterCtx)

	handler := web.NewHandler(web.HandlerDeps{
		Pool:    pool,
		Users:   users,
		Records: records,
		Config:  cfg,
	}, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server started",
			"port", cfg.Port,
			"env", cfg.Env,
			"similarity_max_records", cfg.SimilarityMaxRecords,
			"embedding_dimension", cfg.EmbeddingDimension,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("server stopping")

	cancelLimiter()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exited properly")
}
