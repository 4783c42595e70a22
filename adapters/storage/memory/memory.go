// Package memory provides in-memory usage and price band stores.
// Used by tests, the CLI and single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"sms-cost/core/pricing"
	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

type usageKey struct {
	subject uuid.UUID
	period  types.Period
}

// UsageStore accumulates usage per subject and period
type UsageStore struct {
	totals map[usageKey]int64
	mu     sync.RWMutex
}

// NewUsageStore creates a usage store
func NewUsageStore() *UsageStore {
	return &UsageStore{
		totals: make(map[usageKey]int64),
	}
}

// Add adds quantity units to the subject's usage for period
func (s *UsageStore) Add(ctx context.Context, subject uuid.UUID, period types.Period, quantity int64) error {
	if quantity < 0 {
		return apperrors.Input("usage quantity must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals[usageKey{subject, period}] += quantity
	return nil
}

// QuantityFor returns the usage recorded for the subject in period, 0 if none
func (s *UsageStore) QuantityFor(ctx context.Context, subject uuid.UUID, period types.Period) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.totals[usageKey{subject, period}], nil
}

// BandStore holds price bands per subject with an optional default set
type BandStore struct {
	bySubject map[uuid.UUID][]types.PriceBand
	fallback  []types.PriceBand
	mu        sync.RWMutex
}

// NewBandStore creates a band store
func NewBandStore() *BandStore {
	return &BandStore{
		bySubject: make(map[uuid.UUID][]types.PriceBand),
	}
}

// Put replaces the bands of one subject. The set must be valid.
func (s *BandStore) Put(subject uuid.UUID, bands []types.PriceBand) error {
	if err := pricing.ValidateBands(bands); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bySubject[subject] = pricing.SortBands(bands)
	return nil
}

// SetDefault sets the bands used for subjects without their own set
func (s *BandStore) SetDefault(bands []types.PriceBand) error {
	if err := pricing.ValidateBands(bands); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fallback = pricing.SortBands(bands)
	return nil
}

// BandsFor returns the subject's bands, the default set, or NOT_FOUND
func (s *BandStore) BandsFor(ctx context.Context, subject uuid.UUID) ([]types.PriceBand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bands, ok := s.bySubject[subject]
	if !ok {
		if s.fallback == nil {
			return nil, apperrors.NotFound("price bands", subject.String())
		}
		bands = s.fallback
	}

	out := make([]types.PriceBand, len(bands))
	copy(out, bands)
	return out, nil
}
