package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocStatus is the lifecycle status of a business document.
// Some document types (e.g. matching records) carry no status column at all;
// those are represented by the empty string and are considered postable.
type DocStatus string

const (
	DocStatusNone               DocStatus = ""
	DocStatusDrafted            DocStatus = "DR"
	DocStatusCompleted          DocStatus = "CO"
	DocStatusClosed             DocStatus = "CL"
	DocStatusVoided             DocStatus = "VO"
	DocStatusReversed           DocStatus = "RE"
	DocStatusReversedInProgress DocStatus = "RP"
)

// IsPostable reports whether a document in this status may enter the posting
// pipeline. Only terminal statuses (or no status) qualify.
func (s DocStatus) IsPostable() bool {
	switch s {
	case DocStatusNone, DocStatusCompleted, DocStatusClosed, DocStatusVoided, DocStatusReversed:
		return true
	default:
		return false
	}
}

// PostingStatus is the single-letter posted marker stored on the document row.
type PostingStatus string

const (
	PostingStatusPosted         PostingStatus = "Y"
	PostingStatusNotPosted      PostingStatus = "N"
	PostingStatusNotBalanced    PostingStatus = "b"
	PostingStatusNotConvertible PostingStatus = "c"
	PostingStatusPeriodClosed   PostingStatus = "p"
	PostingStatusInvalidAccount PostingStatus = "i"
	PostingStatusError          PostingStatus = "E"
)

// Message returns the user-facing message key for this status.
func (s PostingStatus) Message() string {
	switch s {
	case PostingStatusPosted:
		return "Posted"
	case PostingStatusNotPosted:
		return "NotPosted"
	case PostingStatusNotBalanced:
		return "NotBalanced"
	case PostingStatusNotConvertible:
		return "NotConvertible"
	case PostingStatusPeriodClosed:
		return "PeriodClosed"
	case PostingStatusInvalidAccount:
		return "InvalidAccount"
	default:
		return "PostingError"
	}
}

// TableRecordRef identifies a business document record independent of its type.
type TableRecordRef struct {
	TableName string `json:"tableName"`
	RecordID  int64  `json:"recordID"`
}

// Amount slots loaded by document detail loading. Not every document type
// uses all of them.
const (
	AmtTypeGross = iota
	AmtTypeNet
	AmtTypeCharge
)

// Document is a business record eligible for ledger posting. It pre-exists in
// the ERP modules and arrives here already in a terminal status; the posting
// engine never creates documents, it only flips their posting flags.
type Document struct {
	Ref        TableRecordRef `json:"ref"`
	DocumentNo string         `json:"documentNo"`
	DocType    string         `json:"docType"`

	Status       DocStatus     `json:"status"`
	PostedStatus PostingStatus `json:"postedStatus"`
	Processed    bool          `json:"processed"`
	Processing   bool          `json:"processing"`
	IsActive     bool          `json:"isActive"`

	ClientID int64 `json:"clientID"`
	OrgID    int64 `json:"orgID"`

	AcctDate time.Time `json:"acctDate"`
	DocDate  time.Time `json:"docDate"`

	// CurrencyCode is empty for non-monetary documents (e.g. inventory moves).
	CurrencyCode     string `json:"currencyCode"`
	ConversionTypeID int64  `json:"conversionTypeID"`
	MultiCurrency    bool   `json:"multiCurrency"`

	// PeriodID, when set, overrides calendar period resolution (e.g. GL
	// journals posted into an adjustment period).
	PeriodID int64 `json:"periodID"`

	// Context keys for account resolution; zero when not applicable to the
	// document type.
	BPartnerID    int64 `json:"bPartnerID"`
	BankAccountID int64 `json:"bankAccountID"`
	CashBookID    int64 `json:"cashBookID"`
	WarehouseID   int64 `json:"warehouseID"`
	ChargeID      int64 `json:"chargeID"`

	// Amounts indexed by AmtType*. Zero-valued when unused.
	Amounts [3]decimal.Decimal `json:"amounts"`

	Lines []DocumentLine `json:"lines"`

	AuditFields
}

// DocumentLine is one line of a business document with its own currency,
// organization and reporting segment.
type DocumentLine struct {
	LineID       int64           `json:"lineID"`
	OrgID        int64           `json:"orgID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Segment      string          `json:"segment"`
	Description  string          `json:"description"`

	// Line semantics the generators care about.
	TaxLine  bool            `json:"taxLine"`
	ChargeID int64           `json:"chargeID"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Amount returns the amount stored in the given slot, zero for unknown slots.
func (d *Document) Amount(amtType int) decimal.Decimal {
	if amtType < 0 || amtType >= len(d.Amounts) {
		return decimal.Zero
	}
	return d.Amounts[amtType]
}

// IsPosted reports whether the document is currently marked posted.
func (d *Document) IsPosted() bool {
	return d.PostedStatus == PostingStatusPosted
}

// SourceBalance is the header amount minus the sum of line amounts, without
// rounding. Positive means the header exceeds the lines.
func (d *Document) SourceBalance() decimal.Decimal {
	balance := d.Amount(AmtTypeGross)
	for _, line := range d.Lines {
		balance = balance.Sub(line.Amount)
	}
	return balance
}

// IsSourceBalanced reports whether the document balances in its own currency.
// Multi-currency documents are source balanced by definition.
func (d *Document) IsSourceBalanced() bool {
	if d.MultiCurrency {
		return true
	}
	return d.SourceBalance().IsZero()
}

// CurrencyCodes returns the distinct currencies referenced by the header and
// all lines, skipping empty (non-monetary) entries.
func (d *Document) CurrencyCodes() []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0, 1+len(d.Lines))
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	add(d.CurrencyCode)
	for _, line := range d.Lines {
		add(line.CurrencyCode)
	}
	return codes
}
