package apperrors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

func TestNewPostingError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	perr := NewPostingError(nil, cause)

	assert.Equal(t, domain.PostingStatusError, perr.StatusOrError())
	assert.Equal(t, "PostingError: connection reset", perr.Error())
	assert.True(t, errors.Is(perr, cause))
	assert.False(t, perr.PreservePostedStatus)
}

func TestNewPostingError_PostedDocumentPreservesMarker(t *testing.T) {
	doc := &domain.Document{
		Ref:          domain.TableRecordRef{TableName: "c_invoice", RecordID: 7},
		PostedStatus: domain.PostingStatusPosted,
	}
	perr := NewPostingError(doc, errors.New("boom"))

	assert.True(t, perr.PreservePostedStatus)
	assert.Equal(t, doc.Ref, perr.DocRef)
}

func TestNewPostingError_PassesThroughExistingError(t *testing.T) {
	inner := NewPostingError(nil, nil).WithStatus(domain.PostingStatusPeriodClosed)
	doc := &domain.Document{PostedStatus: domain.PostingStatusPosted}

	perr := NewPostingError(doc, inner)

	assert.Same(t, inner, perr)
	assert.True(t, perr.PreservePostedStatus)
}

func TestPostingError_StatusOrErrorDefaults(t *testing.T) {
	perr := &PostingError{}
	assert.Equal(t, domain.PostingStatusError, perr.StatusOrError())

	perr.Status = domain.PostingStatusNotBalanced
	assert.Equal(t, domain.PostingStatusNotBalanced, perr.StatusOrError())
}

func TestPostingError_DetailAppends(t *testing.T) {
	perr := NewPostingError(nil, nil).
		WithStatus(domain.PostingStatusNotConvertible).
		WithDetail("no rate USD -> EUR").
		WithDetail("as of 2025-06-15")

	assert.Equal(t, "NotConvertible: no rate USD -> EUR; as of 2025-06-15", perr.Error())
}

func TestPostingError_StringIncludesParams(t *testing.T) {
	perr := NewPostingError(nil, nil).
		WithStatus(domain.PostingStatusNotPosted).
		WithParam("Force", false)

	assert.Contains(t, perr.String(), "NotPosted")
	assert.Contains(t, perr.String(), "Force:false")

	bare := NewPostingError(nil, errors.New("plain"))
	assert.Equal(t, bare.Error(), bare.String())
}

func TestPostingError_ChainedContext(t *testing.T) {
	schema := &domain.AcctSchema{SchemaID: 3}
	fact := &domain.Fact{FactID: "f-1"}

	perr := NewPostingError(nil, nil).
		WithStatus(domain.PostingStatusNotBalanced).
		WithSchema(schema).
		WithFact(fact).
		WithParam("AcctDate", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, int64(3), perr.SchemaID)
	assert.Equal(t, "f-1", perr.FactID)
	assert.Len(t, perr.Params, 1)
}
