package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// FactWriter defines write operations for posted facts. All writes happen
// inside the caller's posting transaction.
type FactWriter interface {
	// SaveFact persists one fact and its lines atomically.
	SaveFact(ctx context.Context, tx pgx.Tx, fact *domain.Fact) error

	// DeleteFactsForDocument removes every previously persisted fact for the
	// document, across all schemas. Returns the number of lines deleted.
	DeleteFactsForDocument(ctx context.Context, tx pgx.Tx, ref domain.TableRecordRef) (int64, error)
}

// FactReader defines read operations for posted facts.
type FactReader interface {
	// FindFactLinesForDocument retrieves the persisted lines for a document
	// under one schema.
	FindFactLinesForDocument(ctx context.Context, ref domain.TableRecordRef, schemaID int64) ([]domain.FactLine, error)
}

// FactRepositoryFacade combines all fact-related repository interfaces
type FactRepositoryFacade interface {
	FactWriter
	FactReader
}

// FactRepositoryWithTx extends FactRepositoryFacade with transaction capabilities
type FactRepositoryWithTx interface {
	FactRepositoryFacade
	TransactionManager
}
