package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
)

type PgxAcctSchemaRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAcctSchemaRepository creates a new repository for accounting schema
// configuration.
func NewPgxAcctSchemaRepository(pool *pgxpool.Pool) portsrepo.AcctSchemaReader {
	return &PgxAcctSchemaRepository{pool: pool}
}

// ListSchemasByClient retrieves the accounting schemas configured for a
// tenant, in posting order.
func (r *PgxAcctSchemaRepository) ListSchemasByClient(ctx context.Context, clientID int64) ([]domain.AcctSchema, error) {
	query := `
		SELECT schema_id, name, client_id, currency_code, std_precision, costing_precision,
		       suspense_balancing, suspense_acct_id, suspense_acct_value,
		       use_currency_balancing, currency_balancing_acct_id, currency_balancing_acct_value,
		       due_from_acct_id, due_from_acct_value, due_to_acct_id, due_to_acct_value,
		       post_only_org_ids,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM acct_schemas
		WHERE client_id = $1 AND is_active = TRUE
		ORDER BY posting_seq, schema_id;`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemas for client %d: %w", clientID, err)
	}
	defer rows.Close()

	var schemas []domain.AcctSchema
	for rows.Next() {
		var s domain.AcctSchema
		err := rows.Scan(
			&s.SchemaID,
			&s.Name,
			&s.ClientID,
			&s.CurrencyCode,
			&s.StdPrecision,
			&s.CostingPrecision,
			&s.GL.SuspenseBalancing,
			&s.GL.SuspenseAcct.AccountID,
			&s.GL.SuspenseAcct.Value,
			&s.GL.UseCurrencyBalancing,
			&s.GL.CurrencyBalancingAcct.AccountID,
			&s.GL.CurrencyBalancingAcct.Value,
			&s.GL.DueFromAcct.AccountID,
			&s.GL.DueFromAcct.Value,
			&s.GL.DueToAcct.AccountID,
			&s.GL.DueToAcct.Value,
			&s.PostOnlyOrgIDs,
			&s.CreatedAt,
			&s.CreatedBy,
			&s.LastUpdatedAt,
			&s.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accounting schema: %w", err)
		}
		schemas = append(schemas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounting schemas: %w", err)
	}
	return schemas, nil
}
