package cmd

import (
	"context"
	"fmt"
	"time"

	"roster-sync/core/config"
	"roster-sync/core/database"
	"roster-sync/core/reconcile"
	"roster-sync/core/storage"
	"roster-sync/feature/directory"
	"roster-sync/feature/members"
	"roster-sync/feature/roster"

	"go.uber.org/zap"
)

// newMemberSource connects to the member database and checks the configured columns.
func newMemberSource(ctx context.Context, cfg *config.Config, l *zap.Logger) (*members.Source, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	l.Info("Connected to member database", zap.String("driver", cfg.Database.Driver))

	source := members.NewSource(db, cfg.Source, l)
	if err := source.Validate(ctx); err != nil {
		return nil, err
	}
	return source, nil
}

// newResolver builds the directory client, wrapped in a name cache when configured.
func newResolver(cfg *config.Config, l *zap.Logger) (reconcile.Resolver, error) {
	client, err := directory.NewClient(cfg.Directory, l)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.Directory.CacheTTLSeconds) * time.Second
	return reconcile.NewCachedResolver(client, ttl), nil
}

// newBackupStorage returns a storage client with the backup bucket in place.
func newBackupStorage(ctx context.Context, cfg *config.Config) (storage.Client, error) {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, err
	}
	return client, nil
}

// newRosterService wires the member source, directory and optional backup storage.
func newRosterService(ctx context.Context, cfg *config.Config, l *zap.Logger, withStorage bool) (*roster.Service, error) {
	source, err := newMemberSource(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	resolver, err := newResolver(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory client: %w", err)
	}

	var client storage.Client
	if withStorage {
		client, err = newBackupStorage(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare backup storage: %w", err)
		}
	}

	return roster.NewService(source, resolver, client, cfg.Storage.Bucket, cfg.Ledger, l), nil
}
