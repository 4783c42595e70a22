// Package storage wires the configured usage and price band backends.
// Supports memory, band files, Redis counters and PostgreSQL.
package storage

import (
	"context"
	stderrors "errors"
	"io"

	"go.uber.org/zap"

	"sms-cost/adapters/bandfile"
	"sms-cost/adapters/storage/memory"
	"sms-cost/adapters/storage/redisstore"
	"sms-cost/adapters/storage/sqlstore"
	"sms-cost/core/billing"
	"sms-cost/internal/config"
	apperrors "sms-cost/internal/errors"
)

// Backends holds the sources a billing service needs
type Backends struct {
	Usage billing.UsageSource
	Bands billing.PriceBandSource

	// SQL is set when either source is backed by the database
	SQL *sqlstore.Store

	closers []io.Closer
}

// Open builds the usage and band sources selected by cfg.
// A SQL store is shared when both sources use it.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Backends{}

	sqlStore := func() (*sqlstore.Store, error) {
		if b.SQL != nil {
			return b.SQL, nil
		}
		store, err := sqlstore.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		b.SQL = store
		b.closers = append(b.closers, store)
		logger.Info("connected to database", zap.String("driver", cfg.Database.Driver))
		return store, nil
	}

	switch cfg.Bands.Source {
	case config.SourceFile:
		src, err := bandfile.Load(cfg.Bands.File)
		if err != nil {
			b.Close()
			return nil, err
		}
		logger.Info("loaded price bands",
			zap.String("file", src.Path()),
			zap.Int("default_bands", len(src.Default())),
			zap.Int("subjects", src.Subjects()),
		)
		b.Bands = src
	case config.SourceSQL:
		store, err := sqlStore()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Bands = store
	case config.SourceMemory:
		store := memory.NewBandStore()
		if cfg.Bands.File != "" {
			src, err := bandfile.Load(cfg.Bands.File)
			if err != nil {
				b.Close()
				return nil, err
			}
			if err := seedMemory(ctx, store, src); err != nil {
				b.Close()
				return nil, err
			}
		}
		b.Bands = store
	}

	switch cfg.Usage.Source {
	case config.SourceMemory:
		b.Usage = memory.NewUsageStore()
	case config.SourceRedis:
		counter, err := redisstore.NewUsageCounter(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, counter)
		logger.Info("connected to redis", zap.String("address", cfg.Redis.Address))
		b.Usage = counter
	case config.SourceSQL:
		store, err := sqlStore()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Usage = store
	}

	return b, nil
}

func seedMemory(ctx context.Context, store *memory.BandStore, src *bandfile.Source) error {
	if def := src.Default(); def != nil {
		if err := store.SetDefault(def); err != nil {
			return err
		}
	}
	for _, id := range src.SubjectIDs() {
		bands, err := src.BandsFor(ctx, id)
		if err != nil {
			return err
		}
		if err := store.Put(id, bands); err != nil {
			return err
		}
	}
	return nil
}

// Service builds a billing service over the backends
func (b *Backends) Service(cfg *config.Config, logger *zap.Logger) *billing.Service {
	return billing.NewService(b.Usage, b.Bands, billing.Options{
		Currency: cfg.Billing.Currency,
		Strict:   cfg.Billing.Strict,
		Logger:   logger,
	})
}

// Close releases every opened connection
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	if len(errs) > 0 {
		return apperrors.Storage("failed to close backends", stderrors.Join(errs...))
	}
	return nil
}

var _ io.Closer = (*Backends)(nil)
