package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PauloHFS/embedsim/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

const (
	SeedEmail    = "demo@example.com"
	seedPassword = "demo1234"
)

var seedRecords = []CreateRecordParams{
	{Title: "Go concurrency", Content: "goroutines and channels", Embedding: Vector{0.9, 0.1, 0.0}},
	{Title: "Go scheduling", Content: "the runtime scheduler multiplexes goroutines", Embedding: Vector{0.8, 0.3, 0.1}},
	{Title: "Sourdough", Content: "levain, flour and water", Embedding: Vector{0.0, 0.2, 0.95}},
}

// Seed cria o usuário de demonstração com alguns records. Idempotente.
func Seed(ctx context.Context, dbConn *sql.DB) error {
	queries := New(dbConn)

	if _, err := queries.GetUserByEmail(ctx, SeedEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up seed user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	tx, err := dbConn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := queries.WithTx(tx)

	userID, err := qtx.CreateUser(ctx, CreateUserParams{
		Email:        SeedEmail,
		PasswordHash: string(hash),
	})
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	for _, r := range seedRecords {
		r.UserID = userID
		if _, err := qtx.CreateRecord(ctx, r); err != nil {
			return fmt.Errorf("failed to seed record %q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	logging.Get().Info("database seeded successfully",
		slog.String("demo_email", SeedEmail),
		slog.Int64("demo_user_id", userID),
		slog.Int("records", len(seedRecords)),
	)
	return nil
}
