package repositories

import (
	"context"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// DocumentReader defines read operations for postable documents
type DocumentReader interface {
	// FindDocumentByRef retrieves a document header by its table/record reference.
	FindDocumentByRef(ctx context.Context, ref domain.TableRecordRef) (*domain.Document, error)

	// FindDocumentLines retrieves the ordered lines of a document.
	FindDocumentLines(ctx context.Context, ref domain.TableRecordRef) ([]domain.DocumentLine, error)
}

// DocumentLocker implements the posting lock protocol on the document row.
// Both operations run on the pool, outside the posting transaction, so that
// lock state stays visible even when the posting transaction rolls back.
//
// The lock has no timeout and no deadlock detection; a row left with
// processing=true by a crashed poster must be cleared administratively.
type DocumentLocker interface {
	// LockDocument performs the conditional update that claims the document
	// for posting. Anything but exactly one affected row is a lock failure
	// returned as a classified *apperrors.PostingError.
	LockDocument(ctx context.Context, ref domain.TableRecordRef, force, repost bool) *apperrors.PostingError

	// UnlockDocument clears the processing marker and finalizes the posted
	// marker: success code when perr is nil, untouched when perr preserves
	// the previous posted status, the failure's status code otherwise.
	UnlockDocument(ctx context.Context, ref domain.TableRecordRef, perr *apperrors.PostingError) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentLocker
}
