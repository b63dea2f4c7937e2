package services

import (
	"context"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// PostingSvcFacade is the inbound contract of the posting engine.
type PostingSvcFacade interface {
	// Post converts a committed document into balanced facts for every
	// configured accounting schema. force bypasses the already-locked check,
	// repost bypasses the already-posted check and replaces prior facts.
	//
	// The return is nil or a single classified error; only its Error()
	// message is part of the stable contract. Internal failures never
	// propagate past this boundary.
	Post(ctx context.Context, ref domain.TableRecordRef, force, repost bool) *apperrors.PostingError
}

// FactGenerator produces the draft facts for one document type. The engine
// treats it as an opaque strategy: it must return at least one non-nil fact,
// and nil results, empty results and nil elements are all failure states.
type FactGenerator interface {
	// CreateFacts generates zero or more draft facts for the document under
	// the given accounting schema.
	CreateFacts(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema) ([]*domain.Fact, error)
}

// AfterPoster is implemented by generators needing document-type-specific
// post-processing after facts were persisted, right before commit.
type AfterPoster interface {
	AfterPost(ctx context.Context, doc *domain.Document) error
}

// DependentDocumentsProvider is implemented by generators whose documents
// cascade posting to dependent documents (e.g. an invoice posting its
// material matches).
type DependentDocumentsProvider interface {
	DependentDocuments(ctx context.Context, doc *domain.Document) ([]domain.TableRecordRef, error)
}

// FactDistributor applies schema-specific allocation (tax, charges) across
// accounts before the balancing passes. Optional; the default is a no-op.
type FactDistributor interface {
	Distribute(ctx context.Context, fact *domain.Fact) error
}

// FactListener receives best-effort lifecycle notifications around fact
// persistence. Listener outcomes never participate in the posting result.
type FactListener interface {
	BeforePost(ctx context.Context, doc *domain.Document)
	AfterPost(ctx context.Context, doc *domain.Document)
}

// AccountResolverSvc resolves an account-type classifier plus keyed context
// to a ledger account under one schema.
type AccountResolverSvc interface {
	ResolveAccount(ctx context.Context, acctType domain.AccountType, contextKey int64, schema *domain.AcctSchema) (domain.AccountRef, error)
}

// PeriodSvc resolves accounting periods and their open state.
type PeriodSvc interface {
	// ResolvePeriodID returns the open period id for the document, or zero
	// when no open period could be obtained. Resolution failure and a closed
	// period are indistinguishable to callers.
	ResolvePeriodID(ctx context.Context, doc *domain.Document) int64

	// IsPeriodOpen reports whether the document's accounting period is open
	// for its document type.
	IsPeriodOpen(ctx context.Context, doc *domain.Document) bool
}

// ConvertibilitySvc verifies every currency in a document converts to the
// schema currency as of the accounting date.
type ConvertibilitySvc interface {
	CheckConvertible(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema) error
}

// ErrorNotifierSvc records a human-visible note about a posting failure.
// Implementations must never fail observably.
type ErrorNotifierSvc interface {
	NotifyPostingError(ctx context.Context, doc *domain.Document, perr *apperrors.PostingError)
}
