package domain

// GeneralLedger is the GL sub-configuration of an accounting schema.
type GeneralLedger struct {
	// SuspenseBalancing tolerates unbalanced source amounts by booking the
	// difference against SuspenseAcct.
	SuspenseBalancing bool       `json:"suspenseBalancing"`
	SuspenseAcct      AccountRef `json:"suspenseAcct"`

	// CurrencyBalancingAcct absorbs rounding differences left over after
	// converting source amounts to the schema currency.
	UseCurrencyBalancing  bool       `json:"useCurrencyBalancing"`
	CurrencyBalancingAcct AccountRef `json:"currencyBalancingAcct"`

	// Intercompany due-from/due-to accounts used when balancing reporting
	// segments against each other.
	DueFromAcct AccountRef `json:"dueFromAcct"`
	DueToAcct   AccountRef `json:"dueToAcct"`
}

// AcctSchema is one ledger configuration a document can be posted under.
type AcctSchema struct {
	SchemaID     int64  `json:"schemaID"`
	Name         string `json:"name"`
	ClientID     int64  `json:"clientID"`
	CurrencyCode string `json:"currencyCode"`

	// StdPrecision is the scale accounted amounts are rounded to.
	StdPrecision     int32 `json:"stdPrecision"`
	CostingPrecision int32 `json:"costingPrecision"`

	GL GeneralLedger `json:"gl"`

	// PostOnlyOrgIDs restricts posting to the listed organizations. Empty
	// means the schema posts for every organization.
	PostOnlyOrgIDs []int64 `json:"postOnlyOrgIDs"`

	AuditFields
}

// IsPostOnlyForSomeOrgs reports whether an organization restriction is set.
func (s *AcctSchema) IsPostOnlyForSomeOrgs() bool {
	return len(s.PostOnlyOrgIDs) > 0
}

// IsDisallowPostingForOrg reports whether the restriction excludes orgID.
func (s *AcctSchema) IsDisallowPostingForOrg(orgID int64) bool {
	if !s.IsPostOnlyForSomeOrgs() {
		return false
	}
	for _, allowed := range s.PostOnlyOrgIDs {
		if allowed == orgID {
			return false
		}
	}
	return true
}

// SkipsDocument applies the organization restriction to a whole document: the
// schema is skipped when the header organization is excluded and, failing
// that, every line organization is excluded too.
func (s *AcctSchema) SkipsDocument(doc *Document) bool {
	if !s.IsPostOnlyForSomeOrgs() {
		return false
	}
	skip := s.IsDisallowPostingForOrg(doc.OrgID)
	for i := 0; skip && i < len(doc.Lines); i++ {
		skip = s.IsDisallowPostingForOrg(doc.Lines[i].OrgID)
	}
	return skip
}
