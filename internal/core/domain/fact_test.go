package domain_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

func testDocument() *domain.Document {
	return &domain.Document{
		Ref:          domain.TableRecordRef{TableName: "c_invoice", RecordID: 1001},
		DocumentNo:   "INV-1001",
		DocType:      "ARI",
		CurrencyCode: "EUR",
		ClientID:     10,
		OrgID:        100,
	}
}

func testSchema() *domain.AcctSchema {
	return &domain.AcctSchema{
		SchemaID:     1,
		Name:         "Main",
		ClientID:     10,
		CurrencyCode: "EUR",
		StdPrecision: 2,
	}
}

func acct(id int64) domain.AccountRef {
	return domain.AccountRef{AccountID: id, Value: fmt.Sprintf("A%d", id)}
}

func TestFact_AddLineDefaults(t *testing.T) {
	doc := testDocument()
	fact := domain.NewFact(doc, testSchema())

	line := fact.AddLine(acct(1), "", decimal.NewFromInt(100), decimal.Zero)

	assert.Equal(t, "EUR", line.CurrencyCode, "line currency should default from document")
	assert.Equal(t, doc.OrgID, line.OrgID, "line org should default from document")
	assert.Equal(t, fact.FactID, line.FactID)
	assert.Len(t, fact.Lines(), 1)
}

func TestFact_CheckAccounts(t *testing.T) {
	fact := domain.NewFact(testDocument(), testSchema())
	fact.AddLine(acct(1), "EUR", decimal.NewFromInt(100), decimal.Zero)
	assert.True(t, fact.CheckAccounts())

	fact.AddLine(domain.AccountRef{}, "EUR", decimal.Zero, decimal.NewFromInt(100))
	assert.False(t, fact.CheckAccounts(), "zero account id is not a valid account")
}

func TestFact_SourceBalance(t *testing.T) {
	fact := domain.NewFact(testDocument(), testSchema())
	fact.AddLine(acct(1), "EUR", decimal.RequireFromString("119.00"), decimal.Zero)
	fact.AddLine(acct(2), "EUR", decimal.Zero, decimal.RequireFromString("100.00"))
	fact.AddLine(acct(3), "EUR", decimal.Zero, decimal.RequireFromString("19.00"))

	assert.True(t, fact.SourceBalance().IsZero())
	assert.True(t, fact.IsSourceBalanced())
}

func TestFact_MultiCurrencyDocumentIsSourceBalanced(t *testing.T) {
	doc := testDocument()
	doc.MultiCurrency = true
	fact := domain.NewFact(doc, testSchema())
	fact.AddLine(acct(1), "EUR", decimal.NewFromInt(100), decimal.Zero)
	fact.AddLine(acct(2), "USD", decimal.Zero, decimal.NewFromInt(90))

	assert.False(t, fact.SourceBalance().IsZero())
	assert.True(t, fact.IsSourceBalanced(), "multi-currency documents skip the source balance check")
}

func TestFact_BalanceSourceFoldsIntoLargestLine(t *testing.T) {
	fact := domain.NewFact(testDocument(), testSchema())
	big := fact.AddLine(acct(1), "EUR", decimal.RequireFromString("119.01"), decimal.Zero)
	fact.AddLine(acct(2), "EUR", decimal.Zero, decimal.RequireFromString("119.00"))

	assert.False(t, fact.IsSourceBalanced())
	fact.BalanceSource()

	assert.True(t, fact.IsSourceBalanced())
	assert.Len(t, fact.Lines(), 2, "rounding remainder must not create a new line")
	assert.True(t, big.AmtSourceCr.Equal(decimal.RequireFromString("0.01")))
}

func TestFact_BalanceSourceWithSuspenseAccount(t *testing.T) {
	schema := testSchema()
	schema.GL.SuspenseBalancing = true
	schema.GL.SuspenseAcct = acct(900)

	fact := domain.NewFact(testDocument(), schema)
	fact.AddLine(acct(1), "EUR", decimal.NewFromInt(100), decimal.Zero)
	fact.AddLine(acct(2), "EUR", decimal.Zero, decimal.NewFromInt(60))

	fact.BalanceSource()

	assert.True(t, fact.IsSourceBalanced())
	lines := fact.Lines()
	assert.Len(t, lines, 3)
	suspense := lines[2]
	assert.Equal(t, int64(900), suspense.Account.AccountID)
	assert.True(t, suspense.AmtSourceCr.Equal(decimal.NewFromInt(40)))
}

func TestFact_BalanceSegments(t *testing.T) {
	schema := testSchema()
	schema.GL.DueFromAcct = acct(801)
	schema.GL.DueToAcct = acct(802)

	fact := domain.NewFact(testDocument(), schema)
	l1 := fact.AddLine(acct(1), "EUR", decimal.NewFromInt(100), decimal.Zero)
	l1.Segment = "HQ"
	l2 := fact.AddLine(acct(2), "EUR", decimal.Zero, decimal.NewFromInt(100))
	l2.Segment = "BRANCH"

	assert.True(t, fact.IsSourceBalanced())
	assert.False(t, fact.IsSegmentBalanced())

	fact.BalanceSegments()

	assert.True(t, fact.IsSegmentBalanced())
	assert.Len(t, fact.Lines(), 4, "one balancing line per unbalanced segment")
	assert.True(t, fact.SegmentBalance("HQ").IsZero())
	assert.True(t, fact.SegmentBalance("BRANCH").IsZero())
}

func TestFact_ConvertAndBalanceAccounting(t *testing.T) {
	fact := domain.NewFact(testDocument(), testSchema())
	debit := fact.AddLine(acct(1), "USD", decimal.RequireFromString("100.00"), decimal.Zero)
	c1 := fact.AddLine(acct(2), "USD", decimal.Zero, decimal.RequireFromString("33.33"))
	c2 := fact.AddLine(acct(3), "USD", decimal.Zero, decimal.RequireFromString("33.33"))
	c3 := fact.AddLine(acct(4), "USD", decimal.Zero, decimal.RequireFromString("33.34"))

	rate := decimal.RequireFromString("0.5")
	for _, line := range []*domain.FactLine{debit, c1, c2, c3} {
		line.Convert(rate, 2)
	}

	// 50.00 vs 16.67 + 16.67 + 16.67; the per-line rounding leaves 0.01.
	assert.False(t, fact.IsAcctBalanced())

	fact.BalanceAccounting()

	assert.True(t, fact.IsAcctBalanced())
	assert.Len(t, fact.Lines(), 4, "without a currency balancing account the remainder folds into the largest line")
	assert.True(t, debit.AmtAcctDr.Equal(decimal.RequireFromString("50.01")))
}

func TestFact_BalanceAccountingWithCurrencyBalancingAccount(t *testing.T) {
	schema := testSchema()
	schema.GL.UseCurrencyBalancing = true
	schema.GL.CurrencyBalancingAcct = acct(950)

	fact := domain.NewFact(testDocument(), schema)
	l1 := fact.AddLine(acct(1), "EUR", decimal.NewFromInt(100), decimal.Zero)
	l2 := fact.AddLine(acct(2), "EUR", decimal.Zero, decimal.NewFromInt(100))
	l1.SetAcctAmounts(decimal.RequireFromString("100.00"), decimal.Zero)
	l2.SetAcctAmounts(decimal.Zero, decimal.RequireFromString("99.99"))

	fact.BalanceAccounting()

	assert.True(t, fact.IsAcctBalanced())
	lines := fact.Lines()
	assert.Len(t, lines, 3)
	assert.Equal(t, int64(950), lines[2].Account.AccountID)
	assert.True(t, lines[2].AmtAcctCr.Equal(decimal.RequireFromString("0.01")))
}

func TestFact_Dispose(t *testing.T) {
	fact := domain.NewFact(testDocument(), testSchema())
	fact.AddLine(acct(1), "EUR", decimal.NewFromInt(1), decimal.Zero)

	fact.Dispose()

	assert.Nil(t, fact.Lines())
	assert.Nil(t, fact.Document())
	assert.Nil(t, fact.Schema())
}
