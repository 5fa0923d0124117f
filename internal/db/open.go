package db

import (
	"context"
	"errors"
	"log/slog"

	"eventsink/internal/config"
	"eventsink/internal/events"
)

// Stores are the long-lived store clients shared by every request.
type Stores struct {
	Keys   events.KeyStore
	Events events.EventStore

	closers []func() error
}

// Open builds the stores selected by cfg.StoreDriver, fronting the key store
// with the redis cache when RedisAddr is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stores{}

	switch cfg.StoreDriver {
	case config.DriverDynamoDB:
		ds, err := NewDynamoStore(ctx, DynamoStoreConfig{
			EventTable: cfg.EventTable,
			KeyTable:   cfg.KeyTable,
			Region:     cfg.AWSRegion,
			Endpoint:   cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, err
		}
		s.Keys, s.Events = ds, ds
	case config.DriverPostgres, config.DriverSQLite:
		gdb, err := Connect(cfg, logger)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}
		if err := EnsureBootstrapAPIKey(gdb, cfg); err != nil {
			_ = s.Close()
			return nil, err
		}
		gs := NewGormStore(gdb, cfg.EventTable, cfg.KeyTable)
		s.Keys, s.Events = gs, gs
	default:
		return nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		client := NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		s.closers = append(s.closers, client.Close)
		s.Keys = NewCachedKeyStore(s.Keys, client, cfg.KeyCacheTTL, logger)
		logger.Info("api key cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.KeyCacheTTL)
	}
	return s, nil
}

// Close releases every underlying connection.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
