// Package pricing - Banded (tiered) cost calculation
// All monetary math is exact decimal arithmetic. No floats.
package pricing

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"sms-cost/core/types"
)

// Calculator applies tiered price bands to a usage quantity.
// It holds no state and is safe for concurrent use.
type Calculator struct{}

// NewCalculator creates a calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute returns the total cost of quantity units under bands.
// Each band charges its unit price only for the units that fall inside it.
// Bands are not validated; see ValidateBands.
func (c *Calculator) Compute(quantity int64, bands []types.PriceBand) decimal.Decimal {
	_, total := c.Price(quantity, bands)
	return total
}

// Price returns the per-band charges together with their total.
// Charges is never nil, so it encodes as an empty list.
func (c *Calculator) Price(quantity int64, bands []types.PriceBand) ([]types.BandCharge, decimal.Decimal) {
	charges := c.Breakdown(quantity, bands)
	total := decimal.Zero
	for _, charge := range charges {
		total = total.Add(charge.Amount)
	}
	if charges == nil {
		charges = []types.BandCharge{}
	}
	return charges, total
}

// Breakdown returns the contribution of every band reached by quantity,
// lowest band first. Bands the quantity never reached are omitted.
func (c *Calculator) Breakdown(quantity int64, bands []types.PriceBand) []types.BandCharge {
	if quantity <= 0 || len(bands) == 0 {
		return nil
	}

	charges := make([]types.BandCharge, 0, len(bands))
	for _, band := range SortBands(bands) {
		if quantity < band.QuantityFrom {
			continue
		}

		top := int64(math.MaxInt64)
		if !band.IsUnbounded() {
			top = band.QuantityTo
		}

		units := min(quantity, top) - band.QuantityFrom + 1
		charges = append(charges, types.BandCharge{
			Band:   band,
			Units:  units,
			Amount: decimal.NewFromInt(units).Mul(band.UnitPrice),
		})
	}

	return charges
}

// SortBands returns a copy of bands ordered by QuantityFrom ascending.
// The input slice is left untouched.
func SortBands(bands []types.PriceBand) []types.PriceBand {
	sorted := make([]types.PriceBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QuantityFrom < sorted[j].QuantityFrom
	})
	return sorted
}
