package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	"github.com/glsuite/gl_posting_app/internal/core/services"
)

func convertibilityFixtures() (*domain.Document, *domain.AcctSchema) {
	doc := &domain.Document{
		Ref:          domain.TableRecordRef{TableName: "c_invoice", RecordID: 1},
		DocType:      "ARI",
		ClientID:     10,
		OrgID:        100,
		AcctDate:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "USD",
	}
	schema := &domain.AcctSchema{SchemaID: 1, ClientID: 10, CurrencyCode: "EUR"}
	return doc, schema
}

func TestCheckConvertible_SameCurrencyNeedsNoRate(t *testing.T) {
	doc, schema := convertibilityFixtures()
	doc.CurrencyCode = "EUR"
	mockRateRepo := new(MockExchangeRateRepository)

	svc := services.NewConvertibilityService(mockRateRepo)
	err := svc.CheckConvertible(context.Background(), doc, schema)

	assert.NoError(t, err)
	mockRateRepo.AssertNotCalled(t, "FindRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckConvertible_NonMonetaryDocument(t *testing.T) {
	doc, schema := convertibilityFixtures()
	doc.CurrencyCode = ""
	mockRateRepo := new(MockExchangeRateRepository)

	svc := services.NewConvertibilityService(mockRateRepo)
	assert.NoError(t, svc.CheckConvertible(context.Background(), doc, schema))
}

func TestCheckConvertible_RateExists(t *testing.T) {
	doc, schema := convertibilityFixtures()
	mockRateRepo := new(MockExchangeRateRepository)
	mockRateRepo.On("FindRate", mock.Anything, "USD", "EUR", doc.AcctDate, int64(0), int64(10), int64(100)).
		Return(&domain.ExchangeRate{Rate: decimal.RequireFromString("0.92")}, nil).Once()

	svc := services.NewConvertibilityService(mockRateRepo)
	assert.NoError(t, svc.CheckConvertible(context.Background(), doc, schema))
	mockRateRepo.AssertExpectations(t)
}

func TestCheckConvertible_MissingRate(t *testing.T) {
	doc, schema := convertibilityFixtures()
	mockRateRepo := new(MockExchangeRateRepository)
	mockRateRepo.On("FindRate", mock.Anything, "USD", "EUR", doc.AcctDate, int64(0), int64(10), int64(100)).
		Return(nil, apperrors.ErrNotFound).Once()

	svc := services.NewConvertibilityService(mockRateRepo)
	err := svc.CheckConvertible(context.Background(), doc, schema)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotConvertible))
	assert.Contains(t, err.Error(), "USD -> EUR as of 2025-06-15")
}

func TestCheckConvertible_ProbeErrorIsNotClassified(t *testing.T) {
	doc, schema := convertibilityFixtures()
	mockRateRepo := new(MockExchangeRateRepository)
	mockRateRepo.On("FindRate", mock.Anything, "USD", "EUR", doc.AcctDate, int64(0), int64(10), int64(100)).
		Return(nil, errors.New("connection reset")).Once()

	svc := services.NewConvertibilityService(mockRateRepo)
	err := svc.CheckConvertible(context.Background(), doc, schema)

	assert.Error(t, err)
	assert.False(t, errors.Is(err, services.ErrNotConvertible), "an infrastructure failure is not a missing rate")
}

func TestCheckConvertible_ChecksEveryDocumentCurrency(t *testing.T) {
	doc, schema := convertibilityFixtures()
	doc.CurrencyCode = "EUR"
	doc.Lines = []domain.DocumentLine{
		{LineID: 10, CurrencyCode: "USD"},
		{LineID: 20, CurrencyCode: "CHF"},
		{LineID: 30, CurrencyCode: "EUR"},
	}
	mockRateRepo := new(MockExchangeRateRepository)
	mockRateRepo.On("FindRate", mock.Anything, "USD", "EUR", doc.AcctDate, int64(0), int64(10), int64(100)).
		Return(&domain.ExchangeRate{Rate: decimal.RequireFromString("0.92")}, nil).Once()
	mockRateRepo.On("FindRate", mock.Anything, "CHF", "EUR", doc.AcctDate, int64(0), int64(10), int64(100)).
		Return(nil, apperrors.ErrNotFound).Once()

	svc := services.NewConvertibilityService(mockRateRepo)
	err := svc.CheckConvertible(context.Background(), doc, schema)

	assert.True(t, errors.Is(err, services.ErrNotConvertible))
	mockRateRepo.AssertExpectations(t)
}
