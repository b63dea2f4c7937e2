package repositories

import (
	"context"
	"time"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRate retrieves the conversion rate effective as of the given date
	// for the conversion type and tenant/organization scope. Returns
	// apperrors.ErrNotFound when no rate is defined; convertibility checks
	// rely on that signal and never cache it.
	FindRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, asOf time.Time, conversionTypeID, clientID, orgID int64) (*domain.ExchangeRate, error)
}
