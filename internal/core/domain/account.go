package domain

// AccountType classifies which leg of a document a resolved account serves.
// The concrete chart-of-accounts numbers behind these classifiers live in the
// account mapping tables; the engine treats them as opaque lookups.
type AccountType string

const (
	AcctTypeCharge          AccountType = "CHARGE"
	AcctTypeReceivable      AccountType = "RECEIVABLE"
	AcctTypeLiability       AccountType = "LIABILITY"
	AcctTypeRevenue         AccountType = "REVENUE"
	AcctTypeExpense         AccountType = "EXPENSE"
	AcctTypeTaxDue          AccountType = "TAX_DUE"
	AcctTypeTaxCredit       AccountType = "TAX_CREDIT"
	AcctTypeUnallocatedCash AccountType = "UNALLOCATED_CASH"
	AcctTypeBankInTransit   AccountType = "BANK_IN_TRANSIT"
	AcctTypeBankAsset       AccountType = "BANK_ASSET"
	AcctTypeCashAsset       AccountType = "CASH_ASSET"
	AcctTypeWriteOff        AccountType = "WRITE_OFF"
	AcctTypeInvDifferences  AccountType = "INV_DIFFERENCES"
)

// AccountRef is a resolved ledger account (a valid combination).
type AccountRef struct {
	AccountID int64  `json:"accountID"`
	Value     string `json:"value"` // account number in the chart of accounts
	Name      string `json:"name"`
}

// IsValid reports whether the reference points at a real account.
func (a AccountRef) IsValid() bool {
	return a.AccountID > 0
}
