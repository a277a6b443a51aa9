// Package source fetches raw job-board records. Records stay untyped maps; the
// listing normalizer owns their interpretation.
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/issues"
)

// Source is a job board or any other provider of raw listing records.
type Source interface {
	Fetch(ctx context.Context, query, location string, limit int) ([]map[string]any, error)
	Name() string
}

// Collect runs src and turns a failure into an issue. Records fetched before the
// failure are kept, so a broken page costs only the pages after it.
func Collect(ctx context.Context, src Source, query, location string, limit int, logger *zap.Logger) ([]map[string]any, []issues.Issue) {
	if logger == nil {
		logger = zap.NewNop()
	}

	records, err := src.Fetch(ctx, query, location, limit)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	logger.Info("fetched listings",
		zap.String("source", src.Name()),
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("count", len(records)),
	)

	if err != nil {
		logger.Warn("fetching listings failed", zap.String("source", src.Name()), zap.Error(err))
		return records, []issues.Issue{issues.New(issues.StageSource, "", "%s: %v", src.Name(), err)}
	}

	return records, nil
}
