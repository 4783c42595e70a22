// Package types - Cost statement types
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Statement is the banded cost of one subject's usage in one period
type Statement struct {
	// ID uniquely identifies this statement
	ID uuid.UUID `json:"id"`

	// Subject is the billed entity
	Subject uuid.UUID `json:"subject"`

	// Period is the billed month
	Period Period `json:"period"`

	// Quantity is the usage the cost was computed from
	Quantity int64 `json:"quantity"`

	// Charges lists each band's contribution, lowest band first
	Charges []BandCharge `json:"charges"`

	// Total is the sum of all charges
	Total decimal.Decimal `json:"total"`

	// Currency is attached by the billing layer, never by the calculator
	Currency Currency `json:"currency,omitempty"`

	// ComputedAt is when the statement was produced
	ComputedAt time.Time `json:"computed_at"`
}
