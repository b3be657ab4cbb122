// Package store defines the persistence boundary for the gateway. Drivers
// live under store/drivers.
package store

import (
	"context"
	"errors"

	"github.com/upbanklab/upgate/internal/gateway/domain"
)

// ErrNotFound is returned by point lookups that match no record.
var ErrNotFound = errors.New("store: not found")

// Store is the top-level persistence handle.
type Store interface {
	Secrets() Secrets

	ApplyMigrations() error
	Ping(ctx context.Context) error
	Close() error
}

// Secrets is keyed access to per-user credential records. Implementations
// are responsible for sealing the token at rest; Get returns it unsealed.
type Secrets interface {
	// Get performs a point lookup by (pk, sk). Returns ErrNotFound when no
	// record exists.
	Get(ctx context.Context, pk, sk string) (domain.Secret, error)
	// Put creates or overwrites the record for (secret.PK, secret.SK).
	Put(ctx context.Context, secret domain.Secret) error
}
