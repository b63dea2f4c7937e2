package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
)

type PgxAccountMappingRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAccountMappingRepository creates a new repository for account mappings.
func NewPgxAccountMappingRepository(pool *pgxpool.Pool) portsrepo.AccountMappingReader {
	return &PgxAccountMappingRepository{pool: pool}
}

// ResolveAccount looks up the ledger account configured for an account type
// classifier and a keyed context under one accounting schema.
func (r *PgxAccountMappingRepository) ResolveAccount(ctx context.Context, acctType domain.AccountType, contextKey int64, schemaID int64) (domain.AccountRef, error) {
	query := `
		SELECT a.account_id, a.value, a.name
		FROM account_mappings m
		JOIN accounts a ON a.account_id = m.account_id
		WHERE m.acct_type = $1 AND m.context_key = $2 AND m.schema_id = $3 AND a.is_active = TRUE;`

	var ref domain.AccountRef
	err := r.pool.QueryRow(ctx, query, acctType, contextKey, schemaID).Scan(&ref.AccountID, &ref.Value, &ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AccountRef{}, apperrors.ErrNotFound
		}
		return domain.AccountRef{}, fmt.Errorf("failed to resolve %s account for key %d: %w", acctType, contextKey, err)
	}
	return ref, nil
}
