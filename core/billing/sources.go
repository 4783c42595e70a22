// Package billing computes banded usage costs for subjects.
// It resolves a subject's usage and price bands through two narrow
// collaborator interfaces and hands both to the pricing calculator.
package billing

import (
	"context"

	"github.com/google/uuid"

	"sms-cost/core/types"
)

// UsageSource supplies the quantity a subject consumed in a period
type UsageSource interface {
	QuantityFor(ctx context.Context, subject uuid.UUID, period types.Period) (int64, error)
}

// PriceBandSource supplies the price bands that apply to a subject
type PriceBandSource interface {
	BandsFor(ctx context.Context, subject uuid.UUID) ([]types.PriceBand, error)
}

// UsageRecorder is implemented by usage sources that can also accumulate usage
type UsageRecorder interface {
	Add(ctx context.Context, subject uuid.UUID, period types.Period, quantity int64) error
}

// UsageFunc adapts a function to UsageSource
type UsageFunc func(ctx context.Context, subject uuid.UUID, period types.Period) (int64, error)

// QuantityFor calls f
func (f UsageFunc) QuantityFor(ctx context.Context, subject uuid.UUID, period types.Period) (int64, error) {
	return f(ctx, subject, period)
}

// BandsFunc adapts a function to PriceBandSource
type BandsFunc func(ctx context.Context, subject uuid.UUID) ([]types.PriceBand, error)

// BandsFor calls f
func (f BandsFunc) BandsFor(ctx context.Context, subject uuid.UUID) ([]types.PriceBand, error) {
	return f(ctx, subject)
}
