package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"go.uber.org/zap"
)

// ErrIndex marks failures writing to the search index, as opposed to reading the database
var ErrIndex = errors.New("search index update failed")

// ErrReindexRunning is returned when a reindex is already in progress
var ErrReindexRunning = errors.New("reindex already in progress")

// PropertySource pages through stored properties
type PropertySource interface {
	ListProperties(ctx context.Context, filters database.PropertyFilters) ([]models.Property, error)
}

// BatchIndexer writes properties to the search index
type BatchIndexer interface {
	IndexProperties(properties []models.Property) error
}

// Reindex pushes every stored property to the index, one page at a time.
// It returns how many properties were indexed before any failure.
func Reindex(ctx context.Context, source PropertySource, index BatchIndexer, logger *zap.SugaredLogger) (int, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	total := 0
	for offset := 0; ; offset += database.DefaultListLimit {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		properties, err := source.ListProperties(ctx, database.PropertyFilters{
			Limit:  database.DefaultListLimit,
			Offset: offset,
		})
		if err != nil {
			return total, fmt.Errorf("failed to fetch properties at offset %d: %w", offset, err)
		}

		if err := index.IndexProperties(properties); err != nil {
			return total, fmt.Errorf("%w: %v", ErrIndex, err)
		}
		total += len(properties)

		if len(properties) < database.DefaultListLimit {
			return total, nil
		}
		logger.Infow("[Reindex] progress", "indexed", total)
	}
}
