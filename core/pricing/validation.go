// Package pricing - Price band validation
package pricing

import (
	stderrors "errors"
	"fmt"

	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

// ValidateBands checks that bands form a contiguous, non-overlapping
// partition of the quantities starting at 1. An empty set is valid.
// All violations are reported together.
func ValidateBands(bands []types.PriceBand) error {
	if len(bands) == 0 {
		return nil
	}

	sorted := SortBands(bands)
	var problems []error

	for i, band := range sorted {
		if band.QuantityFrom < 1 {
			problems = append(problems, fmt.Errorf("band %s: quantity_from must be at least 1", band))
		}
		if band.UnitPrice.IsNegative() {
			problems = append(problems, fmt.Errorf("band %s: unit_price must not be negative", band))
		}
		if !band.IsUnbounded() && band.QuantityTo < band.QuantityFrom {
			problems = append(problems, fmt.Errorf("band %s: quantity_to is below quantity_from", band))
		}
		if band.IsUnbounded() && i != len(sorted)-1 {
			problems = append(problems, fmt.Errorf("band %s: only the last band may be unbounded", band))
		}

		if i == 0 {
			if band.QuantityFrom != 1 {
				problems = append(problems, fmt.Errorf("band %s: first band must start at 1", band))
			}
			continue
		}

		prev := sorted[i-1]
		switch {
		case band.QuantityFrom == prev.QuantityFrom:
			problems = append(problems, fmt.Errorf("band %s: duplicate quantity_from %d", band, band.QuantityFrom))
		case prev.IsUnbounded():
			// already reported above
		case band.QuantityFrom <= prev.QuantityTo:
			problems = append(problems, fmt.Errorf("band %s overlaps band %s", band, prev))
		case band.QuantityFrom > prev.QuantityTo+1:
			problems = append(problems, fmt.Errorf("gap between band %s and band %s", prev, band))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return apperrors.Bands(fmt.Sprintf("%d price band problem(s)", len(problems)), stderrors.Join(problems...))
}
