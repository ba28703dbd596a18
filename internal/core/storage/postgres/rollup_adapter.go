package postgres

import (
	"context"
	"fmt"

	"github.com/webpbin/trafficd/internal/core/bucket"
	"github.com/webpbin/trafficd/internal/core/storage"
)

// Increment aligns ts to the granularity's bucket boundary and performs
// the atomic insert-or-increment. The single upsert statement is what
// keeps concurrent writers for the same (key, bucket) from losing counts;
// different rows only contend at the engine's row level.
func (a *Adapter) Increment(ctx context.Context, g bucket.Granularity, key string, ts int64) error {
	bucketStart := bucket.AlignDown(ts, g.Period())

	if _, err := a.db.ExecContext(ctx, incrementQuery(g), key, bucketStart); err != nil {
		return fmt.Errorf("increment %s hit bucket: %w", g, err)
	}
	return nil
}

// ReadSeries returns per-bucket hit sums across all keys, ascending by
// bucket_start, inclusive bounds.
func (a *Adapter) ReadSeries(ctx context.Context, g bucket.Granularity, start, end int64) ([]storage.SeriesPoint, error) {
	rows, err := a.db.QueryContext(ctx, readSeriesQuery(g), start, end)
	if err != nil {
		return nil, fmt.Errorf("query %s series: %w", g, err)
	}
	defer rows.Close()

	return scanSeries(rows)
}

// ReadKeySeries returns per-bucket hits for one key, ascending by
// bucket_start.
func (a *Adapter) ReadKeySeries(ctx context.Context, g bucket.Granularity, key string, start, end int64) ([]storage.SeriesPoint, error) {
	rows, err := a.db.QueryContext(ctx, readKeySeriesQuery(g), key, start, end)
	if err != nil {
		return nil, fmt.Errorf("query %s series for key %q: %w", g, key, err)
	}
	defer rows.Close()

	return scanSeries(rows)
}

// ReadKeyTotals returns per-key hit sums over the range, descending by
// total with ties broken by key. The caller applies any limit.
func (a *Adapter) ReadKeyTotals(ctx context.Context, g bucket.Granularity, start, end int64) ([]storage.KeyTotal, error) {
	rows, err := a.db.QueryContext(ctx, readKeyTotalsQuery(g), start, end)
	if err != nil {
		return nil, fmt.Errorf("query %s key totals: %w", g, err)
	}
	defer rows.Close()

	var totals []storage.KeyTotal
	for rows.Next() {
		var kt storage.KeyTotal
		if err := rows.Scan(&kt.Key, &kt.Total); err != nil {
			return nil, fmt.Errorf("scan key total row: %w", err)
		}
		totals = append(totals, kt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key total rows: %w", err)
	}
	return totals, nil
}

// DeleteBefore removes rows with bucket_start < cutoff. Only the
// retention sweeper calls this, and only for the fine granularity.
func (a *Adapter) DeleteBefore(ctx context.Context, g bucket.Granularity, cutoff int64) error {
	if _, err := a.db.ExecContext(ctx, deleteBeforeQuery(g), cutoff); err != nil {
		return fmt.Errorf("delete %s buckets before %d: %w", g, cutoff, err)
	}
	return nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanSeries(rows rowScanner) ([]storage.SeriesPoint, error) {
	var series []storage.SeriesPoint
	for rows.Next() {
		var pt storage.SeriesPoint
		if err := rows.Scan(&pt.Bucket, &pt.Hits); err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		series = append(series, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series rows: %w", err)
	}
	return series, nil
}
