package cmd

import (
	"context"
	"fmt"

	"github.com/PauloHFS/embedsim/internal/config"
	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/logging"
)

// openPool carrega a config e abre o pool com os mesmos pragmas do servidor.
func openPool() (*config.Config, *db.DualPool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	sqliteCfg := config.GetSQLiteConfig()
	pool, err := db.NewDualPool("sqlite3", sqliteCfg.DSN(cfg.DatabaseURL), sqliteCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, pool, nil
}

func RunSeed() {
	cfg, pool, err := openPool()
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	logging.Init(cfg.LogLevel)
	logger := logging.Get()

	if err := db.RunMigrations(context.Background(), pool.Write); err != nil {
		logger.Error("failed to run migrations during seed", "error", err)
		return
	}
	if err := db.Seed(context.Background(), pool.Write); err != nil {
		logger.Error("failed to seed database", "error", err)
		return
	}
}

func RunMigrate() {
	cfg, pool, err := openPool()
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	logging.Init(cfg.LogLevel)
	logger := logging.Get()

	if err := db.RunMigrations(context.Background(), pool.Write); err != nil {
		logger.Error("failed to run migrations", "error", err)
		return
	}
	logger.Info("migrations executed successfully")
}
