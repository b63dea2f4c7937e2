package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/internal/dto"
	"github.com/glsuite/gl_posting_app/internal/handlers"
	"github.com/glsuite/gl_posting_app/pkg/config"
)

// --- Mock PostingService ---
type MockPostingService struct {
	mock.Mock
}

var _ portssvc.PostingSvcFacade = (*MockPostingService)(nil)

func (m *MockPostingService) Post(ctx context.Context, ref domain.TableRecordRef, force, repost bool) *apperrors.PostingError {
	args := m.Called(ctx, ref, force, repost)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*apperrors.PostingError)
}

// --- Mock FactReader ---
type MockFactReader struct {
	mock.Mock
}

var _ portsrepo.FactReader = (*MockFactReader)(nil)

func (m *MockFactReader) FindFactLinesForDocument(ctx context.Context, ref domain.TableRecordRef, schemaID int64) ([]domain.FactLine, error) {
	args := m.Called(ctx, ref, schemaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FactLine), args.Error(1)
}

type PostingHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockPosting *MockPostingService
	mockFacts   *MockFactReader
}

func (s *PostingHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Mirrors the registration in main; ignore the duplicate on reruns.
		_ = v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
			return fl.Field().String() != ""
		})
	}
}

func (s *PostingHandlerTestSuite) SetupTest() {
	s.mockPosting = new(MockPostingService)
	s.mockFacts = new(MockFactReader)
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, &config.Config{}, handlers.Dependencies{
		Posting: s.mockPosting,
		Facts:   s.mockFacts,
	})
}

func (s *PostingHandlerTestSuite) TestPostDocument_Success() {
	ref := domain.TableRecordRef{TableName: "c_invoice", RecordID: 1001}
	s.mockPosting.On("Post", mock.Anything, ref, false, false).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posting/c_invoice/1001", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.PostingResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("Y", resp.PostedStatus)
	s.Empty(resp.Error)
	s.mockPosting.AssertExpectations(s.T())
}

func (s *PostingHandlerTestSuite) TestPostDocument_ForceAndRepostFlags() {
	ref := domain.TableRecordRef{TableName: "c_invoice", RecordID: 1001}
	s.mockPosting.On("Post", mock.Anything, ref, true, true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posting/c_invoice/1001?force=true&repost=true", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.mockPosting.AssertExpectations(s.T())
}

func (s *PostingHandlerTestSuite) TestPostDocument_FailureIsUnprocessable() {
	ref := domain.TableRecordRef{TableName: "c_invoice", RecordID: 1001}
	perr := apperrors.NewPostingError(nil, nil).
		WithStatus(domain.PostingStatusPeriodClosed)
	s.mockPosting.On("Post", mock.Anything, ref, false, false).Return(perr).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posting/c_invoice/1001", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp dto.PostingResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("p", resp.PostedStatus)
	s.Equal("PeriodClosed", resp.Error)
}

func (s *PostingHandlerTestSuite) TestPostDocument_InvalidRecordID() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posting/c_invoice/zero", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockPosting.AssertNotCalled(s.T(), "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingHandlerTestSuite) TestGetFactLines_Success() {
	ref := domain.TableRecordRef{TableName: "c_invoice", RecordID: 1001}
	s.mockFacts.On("FindFactLinesForDocument", mock.Anything, ref, int64(1)).
		Return([]domain.FactLine{{LineID: "l1", FactID: "f1"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts/c_invoice/1001?schemaID=1", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.mockFacts.AssertExpectations(s.T())
}

func (s *PostingHandlerTestSuite) TestGetFactLines_MissingSchemaID() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts/c_invoice/1001", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *PostingHandlerTestSuite) TestGetFactLines_RepositoryError() {
	ref := domain.TableRecordRef{TableName: "c_invoice", RecordID: 1001}
	s.mockFacts.On("FindFactLinesForDocument", mock.Anything, ref, int64(1)).
		Return(nil, errors.New("connection reset")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts/c_invoice/1001?schemaID=1", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusInternalServerError, w.Code)
}

func TestPostingHandler(t *testing.T) {
	suite.Run(t, new(PostingHandlerTestSuite))
}
