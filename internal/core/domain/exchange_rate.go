package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one conversion rate valid from DateEffective onwards for a
// given conversion type and tenant/organization scope.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ConversionTypeID int64           `json:"conversionTypeID"`
	ClientID         int64           `json:"clientID"`
	OrgID            int64           `json:"orgID"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
