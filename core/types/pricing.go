// Package types - Pricing types
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceBand is a contiguous range of quantities charged at one unit price.
// Both bounds are inclusive.
type PriceBand struct {
	// QuantityFrom is the first unit charged in this band (>= 1)
	QuantityFrom int64 `json:"quantity_from" yaml:"quantity_from"`

	// QuantityTo is the last unit charged in this band (0 = unlimited)
	QuantityTo int64 `json:"quantity_to,omitempty" yaml:"quantity_to,omitempty"`

	// UnitPrice is the price per unit within this band
	UnitPrice decimal.Decimal `json:"unit_price" yaml:"unit_price"`
}

// NewPriceBand creates a bounded band
func NewPriceBand(from, to int64, unitPrice decimal.Decimal) PriceBand {
	return PriceBand{QuantityFrom: from, QuantityTo: to, UnitPrice: unitPrice}
}

// NewOpenPriceBand creates a band with no upper bound
func NewOpenPriceBand(from int64, unitPrice decimal.Decimal) PriceBand {
	return PriceBand{QuantityFrom: from, UnitPrice: unitPrice}
}

// IsUnbounded reports whether the band has no upper bound
func (b PriceBand) IsUnbounded() bool {
	return b.QuantityTo == 0
}

// String returns a compact description, e.g. "201-500 @ 0.08"
func (b PriceBand) String() string {
	if b.IsUnbounded() {
		return fmt.Sprintf("%d+ @ %s", b.QuantityFrom, b.UnitPrice.String())
	}
	return fmt.Sprintf("%d-%d @ %s", b.QuantityFrom, b.QuantityTo, b.UnitPrice.String())
}

// BandCharge is the part of a cost contributed by one band
type BandCharge struct {
	// Band is the band that was charged
	Band PriceBand `json:"band"`

	// Units is the number of units that fell inside the band
	Units int64 `json:"units"`

	// Amount is Units * Band.UnitPrice
	Amount decimal.Decimal `json:"amount"`
}
