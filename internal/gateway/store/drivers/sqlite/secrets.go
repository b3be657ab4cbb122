package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upbanklab/upgate/internal/gateway/domain"
	"github.com/upbanklab/upgate/pkg/cryptox"
)

type secretsRepo struct {
	db     *sql.DB
	sealer *cryptox.Sealer
}

func (r *secretsRepo) Get(ctx context.Context, pk, sk string) (domain.Secret, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT pk, sk, token, updated_at FROM secrets WHERE pk = ? AND sk = ?`,
		pk, sk,
	)

	var secret domain.Secret
	var sealed []byte
	if err := row.Scan(&secret.PK, &secret.SK, &sealed, &secret.UpdatedAt); err != nil {
		return domain.Secret{}, mapNotFound(err)
	}

	token, err := r.sealer.Open(sealed)
	if err != nil {
		return domain.Secret{}, fmt.Errorf("sqlite: failed to unseal secret for %s/%s: %w", pk, sk, err)
	}
	secret.Token = string(token)

	return secret, nil
}

func (r *secretsRepo) Put(ctx context.Context, secret domain.Secret) error {
	sealed, err := r.sealer.Seal([]byte(secret.Token))
	if err != nil {
		return fmt.Errorf("sqlite: failed to seal secret: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO secrets (pk, sk, token, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(pk, sk) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		secret.PK, secret.SK, sealed, secret.UpdatedAt,
	)
	return err
}
