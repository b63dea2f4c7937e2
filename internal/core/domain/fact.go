package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingType of a fact; only actuals are produced by this engine.
type PostingType string

const (
	PostingTypeActual PostingType = "A"
	PostingTypeBudget PostingType = "B"
)

// Fact is one accounting-schema-scoped posting result for one document: an
// unordered collection of debit/credit lines. It is mutable while the
// balancing passes run and must not be touched after it has been persisted.
type Fact struct {
	FactID      string         `json:"factID"`
	DocRef      TableRecordRef `json:"docRef"`
	SchemaID    int64          `json:"schemaID"`
	PostingType PostingType    `json:"postingType"`

	doc    *Document
	schema *AcctSchema
	lines  []*FactLine
}

// FactLine is a single ledger entry inside a Fact. Source amounts are in the
// originating currency, accounted amounts in the schema currency.
type FactLine struct {
	LineID      string     `json:"lineID"`
	FactID      string     `json:"factID"`
	Account     AccountRef `json:"account"`
	Description string     `json:"description"`

	CurrencyCode string          `json:"currencyCode"`
	AmtSourceDr  decimal.Decimal `json:"amtSourceDr"`
	AmtSourceCr  decimal.Decimal `json:"amtSourceCr"`
	AmtAcctDr    decimal.Decimal `json:"amtAcctDr"`
	AmtAcctCr    decimal.Decimal `json:"amtAcctCr"`

	OrgID   int64  `json:"orgID"`
	Segment string `json:"segment"`

	// DocLineID references the originating document line; nil for
	// header-level and balancing lines.
	DocLineID *int64 `json:"docLineID"`
}

// NewFact creates an empty fact for the document under the given schema.
func NewFact(doc *Document, schema *AcctSchema) *Fact {
	return &Fact{
		FactID:      uuid.NewString(),
		DocRef:      doc.Ref,
		SchemaID:    schema.SchemaID,
		PostingType: PostingTypeActual,
		doc:         doc,
		schema:      schema,
	}
}

// Document returns the document this fact was generated from.
func (f *Fact) Document() *Document { return f.doc }

// Schema returns the accounting schema this fact posts under.
func (f *Fact) Schema() *AcctSchema { return f.schema }

// Lines returns the fact's lines. The slice is owned by the fact.
func (f *Fact) Lines() []*FactLine { return f.lines }

// AddLine appends a line, defaulting organization and currency from the
// document when unset, and returns it for further shaping.
func (f *Fact) AddLine(account AccountRef, currencyCode string, amtDr, amtCr decimal.Decimal) *FactLine {
	if currencyCode == "" {
		currencyCode = f.doc.CurrencyCode
	}
	line := &FactLine{
		LineID:       uuid.NewString(),
		FactID:       f.FactID,
		Account:      account,
		CurrencyCode: currencyCode,
		AmtSourceDr:  amtDr,
		AmtSourceCr:  amtCr,
		OrgID:        f.doc.OrgID,
	}
	f.lines = append(f.lines, line)
	return line
}

// CheckAccounts reports whether every line resolves to a valid account.
func (f *Fact) CheckAccounts() bool {
	for _, line := range f.lines {
		if !line.Account.IsValid() {
			return false
		}
	}
	return true
}

// SourceBalance is the sum of source debits minus source credits.
func (f *Fact) SourceBalance() decimal.Decimal {
	balance := decimal.Zero
	for _, line := range f.lines {
		balance = balance.Add(line.AmtSourceDr).Sub(line.AmtSourceCr)
	}
	return balance
}

// IsSourceBalanced reports source dr/cr equality. Multi-currency documents
// are source balanced by definition; that exemption is deliberate and
// mirrors the original engine.
func (f *Fact) IsSourceBalanced() bool {
	if f.doc.MultiCurrency {
		return true
	}
	return f.SourceBalance().IsZero()
}

// BalanceSource fixes an unbalanced source side. With suspense balancing the
// difference is booked against the schema's suspense account; otherwise it is
// treated as a currency rounding remainder and folded into the line carrying
// the largest source amount.
func (f *Fact) BalanceSource() {
	diff := f.SourceBalance()
	if diff.IsZero() {
		return
	}

	if f.schema.GL.SuspenseBalancing && f.schema.GL.SuspenseAcct.IsValid() {
		line := f.AddLine(f.schema.GL.SuspenseAcct, f.doc.CurrencyCode, decimal.Zero, decimal.Zero)
		line.Description = "Suspense balancing"
		if diff.IsPositive() {
			line.AmtSourceCr = diff
		} else {
			line.AmtSourceDr = diff.Neg()
		}
		return
	}

	line := f.largestSourceLine()
	if line == nil {
		return
	}
	if diff.IsPositive() {
		line.AmtSourceCr = line.AmtSourceCr.Add(diff)
	} else {
		line.AmtSourceDr = line.AmtSourceDr.Add(diff.Neg())
	}
}

// Segments returns the distinct reporting segments touched by the fact.
func (f *Fact) Segments() []string {
	seen := make(map[string]struct{})
	segments := make([]string, 0, len(f.lines))
	for _, line := range f.lines {
		if _, ok := seen[line.Segment]; ok {
			continue
		}
		seen[line.Segment] = struct{}{}
		segments = append(segments, line.Segment)
	}
	return segments
}

// SegmentBalance is source debits minus credits within one segment.
func (f *Fact) SegmentBalance(segment string) decimal.Decimal {
	balance := decimal.Zero
	for _, line := range f.lines {
		if line.Segment != segment {
			continue
		}
		balance = balance.Add(line.AmtSourceDr).Sub(line.AmtSourceCr)
	}
	return balance
}

// IsSegmentBalanced reports dr/cr equality within every reporting segment.
func (f *Fact) IsSegmentBalanced() bool {
	for _, segment := range f.Segments() {
		if !f.SegmentBalance(segment).IsZero() {
			return false
		}
	}
	return true
}

// BalanceSegments inserts intercompany due-from/due-to lines so that each
// reporting segment nets to zero. Segments already balanced are untouched.
func (f *Fact) BalanceSegments() {
	for _, segment := range f.Segments() {
		diff := f.SegmentBalance(segment)
		if diff.IsZero() {
			continue
		}
		var line *FactLine
		if diff.IsPositive() {
			line = f.AddLine(f.schema.GL.DueToAcct, f.doc.CurrencyCode, decimal.Zero, diff)
		} else {
			line = f.AddLine(f.schema.GL.DueFromAcct, f.doc.CurrencyCode, diff.Neg(), decimal.Zero)
		}
		line.Segment = segment
		line.Description = "Segment balancing"
	}
}

// AcctBalance is the sum of accounted debits minus accounted credits.
func (f *Fact) AcctBalance() decimal.Decimal {
	balance := decimal.Zero
	for _, line := range f.lines {
		balance = balance.Add(line.AmtAcctDr).Sub(line.AmtAcctCr)
	}
	return balance
}

// IsAcctBalanced reports dr/cr equality in the schema currency.
func (f *Fact) IsAcctBalanced() bool {
	return f.AcctBalance().IsZero()
}

// BalanceAccounting absorbs the accounted-side remainder, either on the
// schema's currency balancing account or, failing that, as a rounding
// correction on the line with the largest accounted amount.
func (f *Fact) BalanceAccounting() {
	diff := f.AcctBalance()
	if diff.IsZero() {
		return
	}

	if f.schema.GL.UseCurrencyBalancing && f.schema.GL.CurrencyBalancingAcct.IsValid() {
		line := f.AddLine(f.schema.GL.CurrencyBalancingAcct, f.schema.CurrencyCode, decimal.Zero, decimal.Zero)
		line.Description = "Currency balancing"
		if diff.IsPositive() {
			line.AmtAcctCr = diff
		} else {
			line.AmtAcctDr = diff.Neg()
		}
		return
	}

	line := f.largestAcctLine()
	if line == nil {
		return
	}
	if diff.IsPositive() {
		line.AmtAcctCr = line.AmtAcctCr.Add(diff)
	} else {
		line.AmtAcctDr = line.AmtAcctDr.Add(diff.Neg())
	}
}

// Dispose releases the fact's lines. Called after persistence; the fact must
// not be reused afterwards.
func (f *Fact) Dispose() {
	f.lines = nil
	f.doc = nil
	f.schema = nil
}

func (f *Fact) largestSourceLine() *FactLine {
	var best *FactLine
	bestAmt := decimal.Zero
	for _, line := range f.lines {
		amt := line.AmtSourceDr.Add(line.AmtSourceCr).Abs()
		if best == nil || amt.GreaterThan(bestAmt) {
			best = line
			bestAmt = amt
		}
	}
	return best
}

func (f *Fact) largestAcctLine() *FactLine {
	var best *FactLine
	bestAmt := decimal.Zero
	for _, line := range f.lines {
		amt := line.AmtAcctDr.Add(line.AmtAcctCr).Abs()
		if best == nil || amt.GreaterThan(bestAmt) {
			best = line
			bestAmt = amt
		}
	}
	return best
}

// Convert derives the accounted amounts from the source amounts using the
// given rate, rounding to precision. A rate of one keeps the amounts intact
// apart from rounding.
func (l *FactLine) Convert(rate decimal.Decimal, precision int32) {
	l.AmtAcctDr = l.AmtSourceDr.Mul(rate).Round(precision)
	l.AmtAcctCr = l.AmtSourceCr.Mul(rate).Round(precision)
}

// SetAcctAmounts overrides the accounted amounts directly.
func (l *FactLine) SetAcctAmounts(amtDr, amtCr decimal.Decimal) {
	l.AmtAcctDr = amtDr
	l.AmtAcctCr = amtCr
}
