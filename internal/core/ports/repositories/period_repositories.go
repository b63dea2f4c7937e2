package repositories

import (
	"context"
	"time"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// PeriodReader defines read operations for the accounting calendar
type PeriodReader interface {
	// FindPeriodByID retrieves a period directly (explicit period override).
	FindPeriodByID(ctx context.Context, periodID int64) (*domain.Period, error)

	// FindPeriodByDate resolves the calendar period containing the date for
	// an organization.
	FindPeriodByDate(ctx context.Context, date time.Time, orgID int64) (*domain.Period, error)

	// IsPeriodOpen reports whether the period control for the document type
	// allows posting on the given date and organization.
	IsPeriodOpen(ctx context.Context, periodID int64, docType string, date time.Time, orgID int64) (bool, error)
}
