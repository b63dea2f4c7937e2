package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

type PgxDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPgxDocumentRepository creates a new repository for postable documents.
func NewPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{pool: pool}
}

const documentColumns = `
	table_name, record_id, document_no, doc_type, doc_status, posted_status,
	processed, processing, is_active, client_id, org_id, acct_date, doc_date,
	currency_code, conversion_type_id, multi_currency, period_id,
	bpartner_id, bank_account_id, cash_book_id, warehouse_id, charge_id,
	amt_gross, amt_net, amt_charge,
	created_at, created_by, last_updated_at, last_updated_by`

// FindDocumentByRef retrieves a document header by its table/record reference.
func (r *PgxDocumentRepository) FindDocumentByRef(ctx context.Context, ref domain.TableRecordRef) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM posting_documents WHERE table_name = $1 AND record_id = $2;`

	var doc domain.Document
	err := r.pool.QueryRow(ctx, query, ref.TableName, ref.RecordID).Scan(
		&doc.Ref.TableName,
		&doc.Ref.RecordID,
		&doc.DocumentNo,
		&doc.DocType,
		&doc.Status,
		&doc.PostedStatus,
		&doc.Processed,
		&doc.Processing,
		&doc.IsActive,
		&doc.ClientID,
		&doc.OrgID,
		&doc.AcctDate,
		&doc.DocDate,
		&doc.CurrencyCode,
		&doc.ConversionTypeID,
		&doc.MultiCurrency,
		&doc.PeriodID,
		&doc.BPartnerID,
		&doc.BankAccountID,
		&doc.CashBookID,
		&doc.WarehouseID,
		&doc.ChargeID,
		&doc.Amounts[domain.AmtTypeGross],
		&doc.Amounts[domain.AmtTypeNet],
		&doc.Amounts[domain.AmtTypeCharge],
		&doc.CreatedAt,
		&doc.CreatedBy,
		&doc.LastUpdatedAt,
		&doc.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document %s/%d: %w", ref.TableName, ref.RecordID, err)
	}
	return &doc, nil
}

// FindDocumentLines retrieves the ordered lines of a document.
func (r *PgxDocumentRepository) FindDocumentLines(ctx context.Context, ref domain.TableRecordRef) ([]domain.DocumentLine, error) {
	query := `
		SELECT line_id, org_id, currency_code, amount, segment, description,
		       is_tax_line, charge_id, quantity
		FROM posting_document_lines
		WHERE table_name = $1 AND record_id = $2
		ORDER BY line_no, line_id;`

	rows, err := r.pool.Query(ctx, query, ref.TableName, ref.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for %s/%d: %w", ref.TableName, ref.RecordID, err)
	}
	defer rows.Close()

	var lines []domain.DocumentLine
	for rows.Next() {
		var line domain.DocumentLine
		err := rows.Scan(
			&line.LineID,
			&line.OrgID,
			&line.CurrencyCode,
			&line.Amount,
			&line.Segment,
			&line.Description,
			&line.TaxLine,
			&line.ChargeID,
			&line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document lines: %w", err)
	}
	return lines, nil
}

// LockDocument claims the document row for posting with a single conditional
// update. The update runs on the pool, never inside the posting transaction,
// so a later rollback cannot resurrect a released lock. The predicate encodes
// the full lock protocol: the row must be processed and active, must not be
// mid-posting already (waived by force) and must not carry a final posted
// marker already (waived by repost).
func (r *PgxDocumentRepository) LockDocument(ctx context.Context, ref domain.TableRecordRef, force, repost bool) *apperrors.PostingError {
	var sb strings.Builder
	sb.WriteString(`UPDATE posting_documents SET processing = TRUE, last_updated_at = NOW()
		WHERE table_name = $1 AND record_id = $2 AND processed = TRUE AND is_active = TRUE`)
	if !force {
		sb.WriteString(` AND processing = FALSE`)
	}
	if !repost {
		sb.WriteString(` AND posted_status = 'N'`)
	}
	query := sb.String()

	tag, err := r.pool.Exec(ctx, query, ref.TableName, ref.RecordID)
	if err != nil {
		return apperrors.NewPostingError(nil, fmt.Errorf("failed to lock document %s/%d: %w", ref.TableName, ref.RecordID, err)).
			WithStatus(domain.PostingStatusNotPosted).
			WithPreservePostedStatus().
			WithParam("TableName", ref.TableName).
			WithParam("RecordID", ref.RecordID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing matched (or, unexpectedly, more than one row did). Report the
	// row's current flags so the operator can see which predicate refused.
	perr := apperrors.NewPostingError(nil, errors.New("cannot lock document")).
		WithStatus(domain.PostingStatusNotPosted).
		WithPreservePostedStatus().
		WithDetail(fmt.Sprintf("cannot lock document %s/%d", ref.TableName, ref.RecordID)).
		WithParam("TableName", ref.TableName).
		WithParam("RecordID", ref.RecordID).
		WithParam("Force", force).
		WithParam("Repost", repost).
		WithParam("UpdatedCount", tag.RowsAffected()).
		WithParam("SQL", query)
	perr.DocRef = ref

	var processed, processing, isActive bool
	var postedStatus string
	err = r.pool.QueryRow(ctx,
		`SELECT processed, processing, is_active, posted_status FROM posting_documents WHERE table_name = $1 AND record_id = $2;`,
		ref.TableName, ref.RecordID,
	).Scan(&processed, &processing, &isActive, &postedStatus)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		perr.WithParam("RowExists", false)
	case err != nil:
		perr.WithParam("FlagsError", err.Error())
	default:
		perr.WithParam("Processed", processed).
			WithParam("Processing", processing).
			WithParam("IsActive", isActive).
			WithParam("PostedStatus", postedStatus)
	}
	return perr
}

// UnlockDocument clears the processing marker and writes the outcome into the
// posted marker. It runs on the pool so the marker survives a rolled back
// posting transaction; a failure preserving the previous posted marker leaves
// that column untouched.
func (r *PgxDocumentRepository) UnlockDocument(ctx context.Context, ref domain.TableRecordRef, perr *apperrors.PostingError) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	var query string
	args := []any{ref.TableName, ref.RecordID}
	switch {
	case perr == nil:
		query = `UPDATE posting_documents SET processing = FALSE, posted_status = $3, last_updated_at = NOW()
			WHERE table_name = $1 AND record_id = $2;`
		args = append(args, string(domain.PostingStatusPosted))
	case perr.PreservePostedStatus:
		query = `UPDATE posting_documents SET processing = FALSE, last_updated_at = NOW()
			WHERE table_name = $1 AND record_id = $2;`
	default:
		query = `UPDATE posting_documents SET processing = FALSE, posted_status = $3, last_updated_at = NOW()
			WHERE table_name = $1 AND record_id = $2;`
		args = append(args, string(perr.StatusOrError()))
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to unlock document %s/%d: %w", ref.TableName, ref.RecordID, err)
	}
	if tag.RowsAffected() != 1 {
		logger.Warn("unlock matched no document row", "tableName", ref.TableName, "recordID", ref.RecordID)
		return fmt.Errorf("unlock of %s/%d affected %d rows", ref.TableName, ref.RecordID, tag.RowsAffected())
	}
	return nil
}
