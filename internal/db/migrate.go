package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/PauloHFS/embedsim/internal/logging"
	"github.com/PauloHFS/embedsim/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations aplica todas as migrações pendentes do FS embutido.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		logging.Get().Debug("migration applied",
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}
