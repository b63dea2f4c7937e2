package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
)

type PgxPeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPgxPeriodRepository creates a new repository for the accounting calendar.
func NewPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodReader {
	return &PgxPeriodRepository{pool: pool}
}

// FindPeriodByID retrieves a period directly.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID int64) (*domain.Period, error) {
	query := `SELECT period_id, name, org_id, start_date, end_date FROM periods WHERE period_id = $1;`

	var p domain.Period
	err := r.pool.QueryRow(ctx, query, periodID).Scan(&p.PeriodID, &p.Name, &p.OrgID, &p.StartDate, &p.EndDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period %d: %w", periodID, err)
	}
	return &p, nil
}

// FindPeriodByDate resolves the calendar period containing the date. An
// organization-specific calendar wins over the tenant-wide one (org_id = 0).
func (r *PgxPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time, orgID int64) (*domain.Period, error) {
	query := `
		SELECT period_id, name, org_id, start_date, end_date
		FROM periods
		WHERE start_date <= $1 AND end_date >= $1 AND (org_id = $2 OR org_id = 0)
		ORDER BY org_id DESC
		LIMIT 1;`

	var p domain.Period
	err := r.pool.QueryRow(ctx, query, date, orgID).Scan(&p.PeriodID, &p.Name, &p.OrgID, &p.StartDate, &p.EndDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period for %s: %w", date.Format("2006-01-02"), err)
	}
	return &p, nil
}

// IsPeriodOpen reports whether the period control for the document type allows
// posting. A missing control row means the period is closed for that document
// type, not an error.
func (r *PgxPeriodRepository) IsPeriodOpen(ctx context.Context, periodID int64, docType string, date time.Time, orgID int64) (bool, error) {
	query := `SELECT period_action FROM period_controls WHERE period_id = $1 AND doc_type = $2;`

	var action domain.PeriodControlAction
	err := r.pool.QueryRow(ctx, query, periodID, docType).Scan(&action)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query period control %d/%s: %w", periodID, docType, err)
	}
	if action != domain.PeriodOpen {
		return false, nil
	}

	// The control alone is not enough; the date must actually fall inside the
	// period it claims to open.
	period, err := r.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return period.Contains(date), nil
}
