package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
)

type PgxFactRepository struct {
	pool *pgxpool.Pool
}

// NewPgxFactRepository creates a new repository for posted fact lines.
func NewPgxFactRepository(pool *pgxpool.Pool) portsrepo.FactRepositoryWithTx {
	return &PgxFactRepository{pool: pool}
}

// SaveFact persists every line of the fact inside the caller's transaction.
// Use pgx batching since a fact routinely carries many lines.
func (r *PgxFactRepository) SaveFact(ctx context.Context, tx pgx.Tx, fact *domain.Fact) error {
	lines := fact.Lines()
	if len(lines) == 0 {
		return nil
	}

	now := time.Now()
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO fact_lines (line_id, fact_id, table_name, record_id, schema_id, posting_type,
			account_id, account_value, description, currency_code,
			amt_source_dr, amt_source_cr, amt_acct_dr, amt_acct_cr,
			org_id, segment, doc_line_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.LineID,
			fact.FactID,
			fact.DocRef.TableName,
			fact.DocRef.RecordID,
			fact.SchemaID,
			fact.PostingType,
			line.Account.AccountID,
			line.Account.Value,
			line.Description,
			line.CurrencyCode,
			line.AmtSourceDr,
			line.AmtSourceCr,
			line.AmtAcctDr,
			line.AmtAcctCr,
			line.OrgID,
			line.Segment,
			line.DocLineID,
			now,
		)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range lines {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert fact line for fact %s: %w", fact.FactID, err)
		}
	}
	return nil
}

// DeleteFactsForDocument removes every previously persisted fact line for the
// document across all schemas, inside the caller's transaction. Reposting
// relies on this running before facts are regenerated.
func (r *PgxFactRepository) DeleteFactsForDocument(ctx context.Context, tx pgx.Tx, ref domain.TableRecordRef) (int64, error) {
	tag, err := tx.Exec(ctx,
		`DELETE FROM fact_lines WHERE table_name = $1 AND record_id = $2;`,
		ref.TableName, ref.RecordID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete facts for %s/%d: %w", ref.TableName, ref.RecordID, err)
	}
	return tag.RowsAffected(), nil
}

// FindFactLinesForDocument retrieves the persisted lines for a document under
// one schema.
func (r *PgxFactRepository) FindFactLinesForDocument(ctx context.Context, ref domain.TableRecordRef, schemaID int64) ([]domain.FactLine, error) {
	query := `
		SELECT line_id, fact_id, account_id, account_value, description, currency_code,
		       amt_source_dr, amt_source_cr, amt_acct_dr, amt_acct_cr,
		       org_id, segment, doc_line_id
		FROM fact_lines
		WHERE table_name = $1 AND record_id = $2 AND schema_id = $3
		ORDER BY created_at, line_id;`

	rows, err := r.pool.Query(ctx, query, ref.TableName, ref.RecordID, schemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fact lines for %s/%d: %w", ref.TableName, ref.RecordID, err)
	}
	defer rows.Close()

	var lines []domain.FactLine
	for rows.Next() {
		var line domain.FactLine
		err := rows.Scan(
			&line.LineID,
			&line.FactID,
			&line.Account.AccountID,
			&line.Account.Value,
			&line.Description,
			&line.CurrencyCode,
			&line.AmtSourceDr,
			&line.AmtSourceCr,
			&line.AmtAcctDr,
			&line.AmtAcctCr,
			&line.OrgID,
			&line.Segment,
			&line.DocLineID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fact lines: %w", err)
	}
	return lines, nil
}

// Begin starts a new database transaction.
func (r *PgxFactRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *PgxFactRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back a transaction.
func (r *PgxFactRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
