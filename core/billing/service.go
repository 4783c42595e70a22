package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sms-cost/core/pricing"
	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

// Options configures a Service
type Options struct {
	// Currency is attached to every statement
	Currency types.Currency

	// Strict validates band sets before computing and fails on malformed ones
	Strict bool

	// Logger defaults to a no-op logger
	Logger *zap.Logger

	// Now defaults to time.Now
	Now func() time.Time
}

// Service computes cost statements
type Service struct {
	usage    UsageSource
	bands    PriceBandSource
	calc     *pricing.Calculator
	currency types.Currency
	strict   bool
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a cost service
func NewService(usage UsageSource, bands PriceBandSource, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		usage:    usage,
		bands:    bands,
		calc:     pricing.NewCalculator(),
		currency: opts.Currency,
		strict:   opts.Strict,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Calculator returns the calculator used by the service
func (s *Service) Calculator() *pricing.Calculator {
	return s.calc
}

// Strict reports whether band sets are validated before pricing
func (s *Service) Strict() bool {
	return s.strict
}

// Usage returns the configured usage source
func (s *Service) Usage() UsageSource {
	return s.usage
}

// CostFor computes the cost of a subject's usage in a period.
// Collaborator failures are returned as-is (wrapped); the calculator is
// only invoked once both inputs resolved.
func (s *Service) CostFor(ctx context.Context, subject uuid.UUID, period types.Period) (*types.Statement, error) {
	if !period.IsValid() {
		return nil, apperrors.Input("invalid billing period").WithContext("period", period.String())
	}

	var (
		quantity int64
		bands    []types.PriceBand
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.usage.QuantityFor(gctx, subject, period)
		if err != nil {
			return apperrors.Wrapf(apperrors.TypeOf(err), err, "usage lookup for %s in %s", subject, period)
		}
		quantity = q
		return nil
	})
	g.Go(func() error {
		b, err := s.bands.BandsFor(gctx, subject)
		if err != nil {
			return apperrors.Wrapf(apperrors.TypeOf(err), err, "price band lookup for %s", subject)
		}
		bands = b
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("cost lookup failed",
			zap.Stringer("subject", subject),
			zap.Stringer("period", period),
			zap.Error(err))
		return nil, err
	}

	if quantity < 0 {
		return nil, apperrors.Newf(apperrors.TypeInput, "usage source returned negative quantity %d", quantity).
			WithContext("subject", subject.String())
	}

	if s.strict {
		if err := pricing.ValidateBands(bands); err != nil {
			return nil, err
		}
	}

	charges, total := s.calc.Price(quantity, bands)

	s.logger.Debug("cost computed",
		zap.Stringer("subject", subject),
		zap.Stringer("period", period),
		zap.Int64("quantity", quantity),
		zap.Int("bands", len(bands)),
		zap.String("total", total.String()))

	return &types.Statement{
		ID:         uuid.New(),
		Subject:    subject,
		Period:     period,
		Quantity:   quantity,
		Charges:    charges,
		Total:      total,
		Currency:   s.currency,
		ComputedAt: s.now().UTC(),
	}, nil
}

// RecordUsage adds quantity to a subject's usage when the usage source
// supports recording.
func (s *Service) RecordUsage(ctx context.Context, record types.UsageRecord) error {
	recorder, ok := s.usage.(UsageRecorder)
	if !ok {
		return apperrors.New(apperrors.TypeConfig, "configured usage source does not support recording")
	}
	if !record.Period.IsValid() {
		return apperrors.Input("invalid billing period").WithContext("period", record.Period.String())
	}
	if record.Quantity < 0 {
		return apperrors.Input("usage quantity must not be negative")
	}
	return recorder.Add(ctx, record.Subject, record.Period, record.Quantity)
}
