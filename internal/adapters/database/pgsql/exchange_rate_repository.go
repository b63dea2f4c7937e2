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

type PgxExchangeRateRepository struct {
	pool *pgxpool.Pool
}

// NewPgxExchangeRateRepository creates a new repository for exchange rate data.
func NewPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateReader {
	return &PgxExchangeRateRepository{pool: pool}
}

// FindRate retrieves the conversion rate effective as of the given date. An
// organization-specific rate wins over the tenant-wide one (org_id = 0), and
// among the remaining candidates the most recently effective rate applies.
func (r *PgxExchangeRateRepository) FindRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, asOf time.Time, conversionTypeID, clientID, orgID int64) (*domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, from_currency_code, to_currency_code, rate,
		       conversion_type_id, client_id, org_id, date_effective,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE from_currency_code = $1
		  AND to_currency_code = $2
		  AND conversion_type_id = $3
		  AND client_id = $4
		  AND (org_id = $5 OR org_id = 0)
		  AND date_effective <= $6
		ORDER BY org_id DESC, date_effective DESC
		LIMIT 1;`

	var rate domain.ExchangeRate
	err := r.pool.QueryRow(ctx, query, fromCurrencyCode, toCurrencyCode, conversionTypeID, clientID, orgID, asOf).Scan(
		&rate.ExchangeRateID,
		&rate.FromCurrencyCode,
		&rate.ToCurrencyCode,
		&rate.Rate,
		&rate.ConversionTypeID,
		&rate.ClientID,
		&rate.OrgID,
		&rate.DateEffective,
		&rate.CreatedAt,
		&rate.CreatedBy,
		&rate.LastUpdatedAt,
		&rate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rate %s->%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}
	return &rate, nil
}
