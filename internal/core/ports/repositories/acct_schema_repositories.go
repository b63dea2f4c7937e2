package repositories

import (
	"context"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// AcctSchemaReader defines read operations for accounting schema configuration
type AcctSchemaReader interface {
	// ListSchemasByClient retrieves the accounting schemas configured for a
	// tenant, in posting order.
	ListSchemasByClient(ctx context.Context, clientID int64) ([]domain.AcctSchema, error)
}
