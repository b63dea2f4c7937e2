// Package generators holds the built-in fact generation strategies, one per
// document kind. Each generator decides the debit/credit accounts for its
// document type; the posting engine treats them as opaque.
package generators

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
)

// TableInvoice is the document table served by InvoiceGenerator.
const TableInvoice = "c_invoice"

// InvoiceGenerator produces facts for AR and AP invoices.
//
// AR: receivable debit gross; revenue credit net per product line; tax due
// credit per tax line; charge against the charge account. AP mirrors the
// sides with liability and tax credit.
type InvoiceGenerator struct {
	resolver portssvc.AccountResolverSvc
}

// NewInvoiceGenerator creates an invoice generator.
func NewInvoiceGenerator(resolver portssvc.AccountResolverSvc) *InvoiceGenerator {
	return &InvoiceGenerator{resolver: resolver}
}

var _ portssvc.FactGenerator = (*InvoiceGenerator)(nil)

// isSalesDoc reports whether the document base type is on the AR side.
// AR base types start with "AR" (ARI, ARC), AP types with "AP".
func isSalesDoc(docType string) bool {
	return len(docType) >= 2 && docType[0] == 'A' && docType[1] == 'R'
}

func (g *InvoiceGenerator) CreateFacts(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema) ([]*domain.Fact, error) {
	sales := isSalesDoc(doc.DocType)
	fact := domain.NewFact(doc, schema)
	gross := doc.Amount(domain.AmtTypeGross)

	// Header leg: the open item against the business partner.
	headerType := domain.AcctTypeReceivable
	if !sales {
		headerType = domain.AcctTypeLiability
	}
	headerAcct, err := g.resolver.ResolveAccount(ctx, headerType, doc.BPartnerID, schema)
	if err != nil {
		return nil, fmt.Errorf("invoice header account: %w", err)
	}
	if sales {
		fact.AddLine(headerAcct, doc.CurrencyCode, gross, decimal.Zero)
	} else {
		fact.AddLine(headerAcct, doc.CurrencyCode, decimal.Zero, gross)
	}

	// Line legs: revenue/expense per product line, tax per tax line.
	for i := range doc.Lines {
		docLine := &doc.Lines[i]

		lineType := domain.AcctTypeRevenue
		contextKey := doc.BPartnerID
		switch {
		case docLine.TaxLine && sales:
			lineType = domain.AcctTypeTaxDue
		case docLine.TaxLine:
			lineType = domain.AcctTypeTaxCredit
		case docLine.ChargeID > 0:
			lineType = domain.AcctTypeCharge
			contextKey = docLine.ChargeID
		case !sales:
			lineType = domain.AcctTypeExpense
		}

		lineAcct, err := g.resolver.ResolveAccount(ctx, lineType, contextKey, schema)
		if err != nil {
			return nil, fmt.Errorf("invoice line %d account: %w", docLine.LineID, err)
		}

		var line *domain.FactLine
		if sales {
			line = fact.AddLine(lineAcct, docLine.CurrencyCode, decimal.Zero, docLine.Amount)
		} else {
			line = fact.AddLine(lineAcct, docLine.CurrencyCode, docLine.Amount, decimal.Zero)
		}
		lineID := docLine.LineID
		line.DocLineID = &lineID
		line.OrgID = docLine.OrgID
		line.Segment = docLine.Segment
		line.Description = docLine.Description
	}

	return []*domain.Fact{fact}, nil
}
