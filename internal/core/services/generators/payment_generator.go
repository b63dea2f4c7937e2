package generators

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
)

// TablePayment is the document table served by PaymentGenerator.
const TablePayment = "c_payment"

// PaymentGenerator produces facts for incoming and outgoing payments:
// bank-in-transit against unallocated cash, sides depending on direction.
// Receipts (AR side) debit in-transit; disbursements mirror the sides.
type PaymentGenerator struct {
	resolver portssvc.AccountResolverSvc
}

// NewPaymentGenerator creates a payment generator.
func NewPaymentGenerator(resolver portssvc.AccountResolverSvc) *PaymentGenerator {
	return &PaymentGenerator{resolver: resolver}
}

var _ portssvc.FactGenerator = (*PaymentGenerator)(nil)

func (g *PaymentGenerator) CreateFacts(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema) ([]*domain.Fact, error) {
	inTransitAcct, err := g.resolver.ResolveAccount(ctx, domain.AcctTypeBankInTransit, doc.BankAccountID, schema)
	if err != nil {
		return nil, fmt.Errorf("payment in-transit account: %w", err)
	}
	unallocatedAcct, err := g.resolver.ResolveAccount(ctx, domain.AcctTypeUnallocatedCash, doc.BankAccountID, schema)
	if err != nil {
		return nil, fmt.Errorf("payment unallocated-cash account: %w", err)
	}

	fact := domain.NewFact(doc, schema)
	amount := doc.Amount(domain.AmtTypeGross)
	if isSalesDoc(doc.DocType) {
		fact.AddLine(inTransitAcct, doc.CurrencyCode, amount, decimal.Zero)
		fact.AddLine(unallocatedAcct, doc.CurrencyCode, decimal.Zero, amount)
	} else {
		fact.AddLine(unallocatedAcct, doc.CurrencyCode, amount, decimal.Zero)
		fact.AddLine(inTransitAcct, doc.CurrencyCode, decimal.Zero, amount)
	}

	return []*domain.Fact{fact}, nil
}
