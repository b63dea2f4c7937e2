package repositories

import (
	"context"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// AccountMappingReader defines read operations for account mappings
type AccountMappingReader interface {
	// ResolveAccount looks up the ledger account configured for an account
	// type classifier and a keyed context (business partner, bank account,
	// cash book, warehouse, ...) under one accounting schema. Returns
	// apperrors.ErrNotFound when no mapping exists.
	ResolveAccount(ctx context.Context, acctType domain.AccountType, contextKey int64, schemaID int64) (domain.AccountRef, error)
}
