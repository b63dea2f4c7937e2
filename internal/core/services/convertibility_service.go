package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

// ErrNotConvertible reports a currency without a conversion path to the
// schema currency as of the accounting date.
var ErrNotConvertible = errors.New("no conversion rate to accounting currency")

// convertibilityService verifies that every currency referenced by a document
// can be converted to the schema currency. Checked once per schema per
// posting attempt, never cached: conversion tables may change in between.
type convertibilityService struct {
	rateRepo portsrepo.ExchangeRateReader
}

// NewConvertibilityService creates the currency convertibility checker.
func NewConvertibilityService(rateRepo portsrepo.ExchangeRateReader) portssvc.ConvertibilitySvc {
	return &convertibilityService{rateRepo: rateRepo}
}

var _ portssvc.ConvertibilitySvc = (*convertibilityService)(nil)

func (s *convertibilityService) CheckConvertible(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Non-monetary documents have nothing to convert.
	codes := doc.CurrencyCodes()
	if len(codes) == 0 {
		logger.Debug("No currency on document, convertible", slog.String("table", doc.Ref.TableName), slog.Int64("record", doc.Ref.RecordID))
		return nil
	}

	for _, code := range codes {
		if code == schema.CurrencyCode {
			continue
		}
		_, err := s.rateRepo.FindRate(ctx, code, schema.CurrencyCode, doc.AcctDate, doc.ConversionTypeID, doc.ClientID, doc.OrgID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s -> %s as of %s", ErrNotConvertible, code, schema.CurrencyCode, doc.AcctDate.Format("2006-01-02"))
			}
			return fmt.Errorf("failed to probe conversion rate %s -> %s: %w", code, schema.CurrencyCode, err)
		}
	}
	return nil
}
