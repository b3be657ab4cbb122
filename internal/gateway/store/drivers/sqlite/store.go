// Package sqlite is the SQLite-backed store driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/upbanklab/upgate/internal/gateway/store"
	"github.com/upbanklab/upgate/pkg/cryptox"

	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	sealer *cryptox.Sealer
	dsn    string
}

// NewStore opens the database at dsn. The sealer encrypts secret tokens
// before they touch disk; it is required, not optional.
func NewStore(dsn string, sealer *cryptox.Sealer) (*Store, error) {
	if sealer == nil {
		return nil, errors.New("sqlite: sealer is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		sealer: sealer,
		dsn:    dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Secrets() store.Secrets { return &secretsRepo{db: s.db, sealer: s.sealer} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
