package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/borca-dev/borca/internal/domain"
)

// CleanCacheInput contains the parameters for cleaning the cache.
type CleanCacheInput struct{}

// CleanCache is the use case for removing every cache record.
type CleanCache struct {
	store  domain.CacheStore
	logger *slog.Logger
}

// NewCleanCache creates a new CleanCache use case.
func NewCleanCache(store domain.CacheStore, logger *slog.Logger) *CleanCache {
	return &CleanCache{store: store, logger: logger}
}

// Execute removes the cache directory, including the project record.
func (uc *CleanCache) Execute(_ context.Context, _ CleanCacheInput) error {
	if err := uc.store.Clear(); err != nil {
		return fmt.Errorf("clean cache: %w", err)
	}
	uc.logger.Info("cache cleared")
	return nil
}
