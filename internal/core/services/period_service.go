package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

// periodService resolves accounting periods. An explicit period override on
// the document (e.g. GL journals posted into an adjustment period) wins over
// calendar resolution by accounting date and organization.
type periodService struct {
	periodRepo portsrepo.PeriodReader
}

// NewPeriodService creates the period resolution service.
func NewPeriodService(periodRepo portsrepo.PeriodReader) portssvc.PeriodSvc {
	return &periodService{periodRepo: periodRepo}
}

var _ portssvc.PeriodSvc = (*periodService)(nil)

// ResolvePeriodID returns the open period id for the document, or zero. A
// period that cannot be resolved and one that resolved but is closed both
// yield zero; callers only get the open/not-open distinction.
func (s *periodService) ResolvePeriodID(ctx context.Context, doc *domain.Document) int64 {
	logger := middleware.GetLoggerFromCtx(ctx)

	var period *domain.Period
	var err error

	if doc.PeriodID > 0 {
		period, err = s.periodRepo.FindPeriodByID(ctx, doc.PeriodID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load period override", slog.Int64("period_id", doc.PeriodID), slog.String("error", err.Error()))
			return 0
		}
	}
	if period == nil {
		period, err = s.periodRepo.FindPeriodByDate(ctx, doc.AcctDate, doc.OrgID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Failed to resolve period by date", slog.Time("acct_date", doc.AcctDate), slog.String("error", err.Error()))
			}
			return 0
		}
	}

	open, err := s.periodRepo.IsPeriodOpen(ctx, period.PeriodID, doc.DocType, doc.AcctDate, doc.OrgID)
	if err != nil {
		logger.Error("Failed to check period control", slog.Int64("period_id", period.PeriodID), slog.String("error", err.Error()))
		return 0
	}
	if !open {
		return 0
	}
	return period.PeriodID
}

func (s *periodService) IsPeriodOpen(ctx context.Context, doc *domain.Document) bool {
	return s.ResolvePeriodID(ctx, doc) > 0
}
