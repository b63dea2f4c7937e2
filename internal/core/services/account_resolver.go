package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
)

// accountResolver resolves account-type classifiers to ledger accounts via
// the account mapping tables. Pure lookup, no mutation.
type accountResolver struct {
	mappingRepo portsrepo.AccountMappingReader
}

// NewAccountResolver creates the account resolution service.
func NewAccountResolver(mappingRepo portsrepo.AccountMappingReader) portssvc.AccountResolverSvc {
	return &accountResolver{mappingRepo: mappingRepo}
}

var _ portssvc.AccountResolverSvc = (*accountResolver)(nil)

func (s *accountResolver) ResolveAccount(ctx context.Context, acctType domain.AccountType, contextKey int64, schema *domain.AcctSchema) (domain.AccountRef, error) {
	if contextKey <= 0 {
		return domain.AccountRef{}, fmt.Errorf("%w: no context key for account type %s", apperrors.ErrValidation, acctType)
	}

	account, err := s.mappingRepo.ResolveAccount(ctx, acctType, contextKey, schema.SchemaID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.AccountRef{}, fmt.Errorf("%w: no %s account mapped for key %d in schema %d", apperrors.ErrNotFound, acctType, contextKey, schema.SchemaID)
		}
		return domain.AccountRef{}, fmt.Errorf("failed to resolve %s account: %w", acctType, err)
	}
	if !account.IsValid() {
		return domain.AccountRef{}, fmt.Errorf("%w: %s account mapping for key %d resolves to no account", apperrors.ErrNotFound, acctType, contextKey)
	}
	return account, nil
}
