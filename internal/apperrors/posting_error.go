package apperrors

import (
	"fmt"
	"strings"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// PostingError is the single classified failure the posting pipeline reports.
// It carries the posting status (which becomes the document's posted marker
// unless the previous status must be preserved), the accounting schema and
// fact in whose context the failure happened (when known), a detail message
// and arbitrary diagnostic parameters. It is a result value, never a panic.
type PostingError struct {
	Status   domain.PostingStatus
	DocRef   domain.TableRecordRef
	SchemaID int64
	FactID   string

	Detail string
	Params map[string]any

	// PreservePostedStatus keeps the document's previous posted marker on
	// unlock. Set when the failure happened before any ledger mutation, or
	// when an already-posted document failed a repost attempt.
	PreservePostedStatus bool

	cause error
}

// NewPostingError classifies an arbitrary failure for the given document.
// An already-posted document automatically preserves its posted marker, so a
// failed repost cannot downgrade a settled posting.
func NewPostingError(doc *domain.Document, cause error) *PostingError {
	if perr, ok := cause.(*PostingError); ok {
		if doc != nil && doc.IsPosted() {
			perr.PreservePostedStatus = true
		}
		return perr
	}
	perr := &PostingError{
		Status: domain.PostingStatusError,
		cause:  cause,
	}
	if doc != nil {
		perr.DocRef = doc.Ref
		if doc.IsPosted() {
			perr.PreservePostedStatus = true
		}
	}
	if cause != nil {
		perr.Detail = cause.Error()
	}
	return perr
}

// WithStatus sets the classified posting status.
func (e *PostingError) WithStatus(status domain.PostingStatus) *PostingError {
	e.Status = status
	return e
}

// WithSchema records the accounting schema being posted when the failure hit.
func (e *PostingError) WithSchema(schema *domain.AcctSchema) *PostingError {
	if schema != nil {
		e.SchemaID = schema.SchemaID
	}
	return e
}

// WithFact records the offending fact.
func (e *PostingError) WithFact(fact *domain.Fact) *PostingError {
	if fact != nil {
		e.FactID = fact.FactID
	}
	return e
}

// WithDetail sets (or appends to) the detail message.
func (e *PostingError) WithDetail(detail string) *PostingError {
	if e.Detail == "" {
		e.Detail = detail
	} else {
		e.Detail = e.Detail + "; " + detail
	}
	return e
}

// WithParam attaches a diagnostic key/value pair.
func (e *PostingError) WithParam(key string, value any) *PostingError {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
	return e
}

// WithPreservePostedStatus marks the previous posted marker untouchable.
func (e *PostingError) WithPreservePostedStatus() *PostingError {
	e.PreservePostedStatus = true
	return e
}

// StatusOrError returns the classified status, defaulting to the generic
// error status when none was set.
func (e *PostingError) StatusOrError() domain.PostingStatus {
	if e.Status == "" {
		return domain.PostingStatusError
	}
	return e.Status
}

// Error renders the single caller-visible message string.
func (e *PostingError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.StatusOrError().Message())
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *PostingError) Unwrap() error {
	return e.cause
}

// String includes the diagnostic parameters; used for logging, not for the
// caller-visible message.
func (e *PostingError) String() string {
	if len(e.Params) == 0 {
		return e.Error()
	}
	return fmt.Sprintf("%s %v", e.Error(), e.Params)
}
