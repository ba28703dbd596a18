package storage

import (
	"context"

	"github.com/webpbin/trafficd/internal/core/bucket"
)

// SeriesPoint is one pre-aggregated bucket in a traffic series.
type SeriesPoint struct {
	Bucket int64 `json:"bucket"`
	Hits   int64 `json:"hits"`
}

// KeyTotal is an image key's summed hits over a queried range.
type KeyTotal struct {
	Key   string `json:"key"`
	Total int64 `json:"total"`
}

// RollupStore is the durable counter table behind the rollup engine, one
// table per granularity. The ingestion service is the only writer and the
// retention sweeper is the only deleter; everything else reads.
type RollupStore interface {
	// Increment aligns ts to the granularity's bucket boundary and
	// atomically inserts the (key, bucket) row with hits=1 or adds one to
	// it. Concurrent increments for the same key and bucket never lose a
	// count; rows in different buckets or keys are fully independent.
	Increment(ctx context.Context, g bucket.Granularity, key string, ts int64) error

	// ReadSeries returns per-bucket hit sums across all keys for the
	// inclusive [start, end] range, ascending by bucket_start.
	ReadSeries(ctx context.Context, g bucket.Granularity, start, end int64) ([]SeriesPoint, error)

	// ReadKeySeries returns per-bucket hits for a single key, ascending
	// by bucket_start.
	ReadKeySeries(ctx context.Context, g bucket.Granularity, key string, start, end int64) ([]SeriesPoint, error)

	// ReadKeyTotals returns per-key hit sums over the inclusive
	// [start, end] range, descending by total with ties broken by key.
	// Limiting is left to the caller so that multi-granularity unions can
	// be merged before truncation.
	ReadKeyTotals(ctx context.Context, g bucket.Granularity, start, end int64) ([]KeyTotal, error)

	// DeleteBefore removes rows with bucket_start < cutoff.
	DeleteBefore(ctx context.Context, g bucket.Granularity, cutoff int64) error

	// Ping reports storage reachability for health checks.
	Ping(ctx context.Context) error
}
