package db

import (
	"context"

	"go.uber.org/zap"

	"portfoliosync/logger"
)

type dryRunStore struct {
	Store
}

// DryRun wraps store so that reads pass through and writes are only logged.
func DryRun(store Store) Store {
	return &dryRunStore{Store: store}
}

func (d *dryRunStore) Upsert(_ context.Context, collection string, filter Filter, _ any) error {
	logger.Info("Dry run: skipping upsert", zap.String("collection", collection), zap.Any("filter", filter))
	return nil
}

func (d *dryRunStore) DeleteMany(_ context.Context, collection string, filter Filter) (int64, error) {
	logger.Info("Dry run: skipping delete", zap.String("collection", collection), zap.Any("filter", filter))
	return 0, nil
}

func (d *dryRunStore) InsertMany(_ context.Context, collection string, docs []any) (int, error) {
	logger.Info("Dry run: skipping insert", zap.String("collection", collection), zap.Int("count", len(docs)))
	return len(docs), nil
}
