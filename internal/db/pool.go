package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/PauloHFS/embedsim/internal/config"
)

// DualPool separa leituras concorrentes do único escritor que o SQLite admite.
// Os handlers de similaridade e busca só leem; criação de users e records
// passa pelo Write.
type DualPool struct {
	Read  *sql.DB
	Write *sql.DB
}

// NewDualPool abre os dois pools sobre o mesmo DSN. O DSN já deve trazer os
// parâmetros de conexão (config.SQLiteConfig.DSN).
func NewDualPool(driver, dsn string, sqliteCfg config.SQLiteConfig) (*DualPool, error) {
	readDB, err := openPool(driver, dsn, runtime.NumCPU()*2, runtime.NumCPU())
	if err != nil {
		return nil, fmt.Errorf("failed to open read pool: %w", err)
	}

	writeDB, err := openPool(driver, dsn, 1, 1)
	if err != nil {
		readDB.Close()
		return nil, fmt.Errorf("failed to open write pool: %w", err)
	}

	pool := &DualPool{Read: readDB, Write: writeDB}

	for name, conn := range map[string]*sql.DB{"read": readDB, "write": writeDB} {
		if err := sqliteCfg.ApplyPragmas(conn); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply %s pragmas: %w", name, err)
		}
	}

	return pool, nil
}

func openPool(driver, dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxIdleTime(5 * time.Minute)
	conn.SetConnMaxLifetime(time.Hour)
	return conn, nil
}

// WriteTx roda fn numa transação do escritor. Como o pool de escrita tem uma
// única conexão, leituras feitas dentro de fn enxergam um estado que nenhum
// outro escritor altera antes do commit.
func (p *DualPool) WriteTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := p.Write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *DualPool) Close() error {
	var errs []error
	if p.Read != nil {
		if err := p.Read.Close(); err != nil {
			errs = append(errs, fmt.Errorf("read pool close: %w", err))
		}
	}
	if p.Write != nil {
		if err := p.Write.Close(); err != nil {
			errs = append(errs, fmt.Errorf("write pool close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Ping verifica as duas conexões.
func (p *DualPool) Ping(ctx context.Context) error {
	if err := p.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read pool: %w", err)
	}
	if err := p.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}
	return nil
}

func (p *DualPool) Queries() *Queries {
	return New(p.Read)
}

func (p *DualPool) QueriesWrite() *Queries {
	return New(p.Write)
}
