package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	"github.com/glsuite/gl_posting_app/internal/core/services"
)

// --- Mock PeriodReader ---
type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodReader = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID int64) (*domain.Period, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time, orgID int64) (*domain.Period, error) {
	args := m.Called(ctx, date, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) IsPeriodOpen(ctx context.Context, periodID int64, docType string, date time.Time, orgID int64) (bool, error) {
	args := m.Called(ctx, periodID, docType, date, orgID)
	return args.Bool(0), args.Error(1)
}

func periodFixtures() (*domain.Document, *domain.Period) {
	acctDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	doc := &domain.Document{
		Ref:      domain.TableRecordRef{TableName: "c_invoice", RecordID: 1},
		DocType:  "ARI",
		OrgID:    100,
		AcctDate: acctDate,
	}
	period := &domain.Period{
		PeriodID:  42,
		Name:      "2025-06",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	return doc, period
}

func TestResolvePeriodID_ByDate(t *testing.T) {
	doc, period := periodFixtures()
	mockRepo := new(MockPeriodRepository)
	mockRepo.On("FindPeriodByDate", mock.Anything, doc.AcctDate, int64(100)).Return(period, nil)
	mockRepo.On("IsPeriodOpen", mock.Anything, int64(42), "ARI", doc.AcctDate, int64(100)).Return(true, nil)

	svc := services.NewPeriodService(mockRepo)

	assert.Equal(t, int64(42), svc.ResolvePeriodID(context.Background(), doc))
	assert.True(t, svc.IsPeriodOpen(context.Background(), doc))
	mockRepo.AssertExpectations(t)
}

func TestResolvePeriodID_OverrideWinsOverCalendar(t *testing.T) {
	doc, _ := periodFixtures()
	doc.PeriodID = 77
	adjustment := &domain.Period{PeriodID: 77, Name: "2025-ADJ"}
	mockRepo := new(MockPeriodRepository)
	mockRepo.On("FindPeriodByID", mock.Anything, int64(77)).Return(adjustment, nil).Once()
	mockRepo.On("IsPeriodOpen", mock.Anything, int64(77), "ARI", doc.AcctDate, int64(100)).Return(true, nil).Once()

	svc := services.NewPeriodService(mockRepo)

	assert.Equal(t, int64(77), svc.ResolvePeriodID(context.Background(), doc))
	mockRepo.AssertNotCalled(t, "FindPeriodByDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePeriodID_MissingOverrideFallsBackToCalendar(t *testing.T) {
	doc, period := periodFixtures()
	doc.PeriodID = 77
	mockRepo := new(MockPeriodRepository)
	mockRepo.On("FindPeriodByID", mock.Anything, int64(77)).Return(nil, apperrors.ErrNotFound).Once()
	mockRepo.On("FindPeriodByDate", mock.Anything, doc.AcctDate, int64(100)).Return(period, nil).Once()
	mockRepo.On("IsPeriodOpen", mock.Anything, int64(42), "ARI", doc.AcctDate, int64(100)).Return(true, nil).Once()

	svc := services.NewPeriodService(mockRepo)

	assert.Equal(t, int64(42), svc.ResolvePeriodID(context.Background(), doc))
	mockRepo.AssertExpectations(t)
}

func TestResolvePeriodID_NoPeriodForDate(t *testing.T) {
	doc, _ := periodFixtures()
	mockRepo := new(MockPeriodRepository)
	mockRepo.On("FindPeriodByDate", mock.Anything, doc.AcctDate, int64(100)).Return(nil, apperrors.ErrNotFound)

	svc := services.NewPeriodService(mockRepo)

	assert.Zero(t, svc.ResolvePeriodID(context.Background(), doc))
	assert.False(t, svc.IsPeriodOpen(context.Background(), doc))
}

func TestResolvePeriodID_ClosedPeriodYieldsZero(t *testing.T) {
	doc, period := periodFixtures()
	mockRepo := new(MockPeriodRepository)
	mockRepo.On("FindPeriodByDate", mock.Anything, doc.AcctDate, int64(100)).Return(period, nil)
	mockRepo.On("IsPeriodOpen", mock.Anything, int64(42), "ARI", doc.AcctDate, int64(100)).Return(false, nil)

	svc := services.NewPeriodService(mockRepo)

	assert.Zero(t, svc.ResolvePeriodID(context.Background(), doc))
}

func TestResolvePeriodID_ControlErrorYieldsZero(t *testing.T) {
	doc, period := periodFixtures()
	mockRepo := new(MockPeriodRepository)
	mockRepo.On("FindPeriodByDate", mock.Anything, doc.AcctDate, int64(100)).Return(period, nil)
	mockRepo.On("IsPeriodOpen", mock.Anything, int64(42), "ARI", doc.AcctDate, int64(100)).Return(false, errors.New("connection reset"))

	svc := services.NewPeriodService(mockRepo)

	assert.Zero(t, svc.ResolvePeriodID(context.Background(), doc))
}
