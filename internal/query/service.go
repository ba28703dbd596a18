package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/webpbin/trafficd/internal/core/bucket"
	"github.com/webpbin/trafficd/internal/core/storage"
	"github.com/webpbin/trafficd/internal/retention"
	"golang.org/x/sync/singleflight"
)

// TrafficSeries is the chart-facing traffic response. The granularity
// label is informational, not a fixed enum: super-bucketed responses
// carry labels like "3hourly" where the multiplier varies with data
// density.
type TrafficSeries struct {
	Granularity string                `json:"granularity"`
	Data        []storage.SeriesPoint `json:"data"`
}

// Options tunes the query service; zero values fall back to defaults.
type Options struct {
	// RetentionWindow mirrors the sweeper's fine-granularity horizon and
	// drives the fine/medium union boundary for top-N reads.
	RetentionWindow time.Duration
	DefaultDays     int
	DefaultTopLimit int
}

// Service composes the granularity selector with rollup store reads.
type Service struct {
	store           storage.RollupStore
	retentionWindow time.Duration
	defaultDays     int
	defaultTopLimit int

	// Dashboard refreshes tend to stampede identical reads; collapse them.
	group singleflight.Group

	now func() time.Time
}

func NewService(store storage.RollupStore, opts Options) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	if opts.RetentionWindow <= 0 {
		opts.RetentionWindow = retention.DefaultWindow
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 30
	}
	if opts.DefaultTopLimit <= 0 {
		opts.DefaultTopLimit = 10
	}
	return &Service{
		store:           store,
		retentionWindow: opts.RetentionWindow,
		defaultDays:     opts.DefaultDays,
		defaultTopLimit: opts.DefaultTopLimit,
		now:             time.Now,
	}
}

// RangeForDays is the "last N days" window ending now.
func (s *Service) RangeForDays(days int) bucket.TimeRange {
	if days <= 0 {
		days = s.defaultDays
	}
	now := s.now().Unix()
	return bucket.TimeRange{Start: now - int64(days)*bucket.CoarsePeriod, End: now}
}

// rangeFromParams resolves the {days} / {start,end} request forms.
func (s *Service) rangeFromParams(days int, start, end int64) (bucket.TimeRange, error) {
	if start != 0 || end != 0 {
		r := bucket.TimeRange{Start: start, End: end}
		return r, r.Validate()
	}
	return s.RangeForDays(days), nil
}

// GetTraffic returns the hit series for a range at the coarsest
// granularity that still resolves it, with adaptive super-bucketing.
func (s *Service) GetTraffic(ctx context.Context, r bucket.TimeRange) (*TrafficSeries, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do(fmt.Sprintf("traffic:%d:%d", r.Start, r.End), func() (interface{}, error) {
		return s.readTraffic(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return v.(*TrafficSeries), nil
}

func (s *Service) readTraffic(ctx context.Context, r bucket.TimeRange) (*TrafficSeries, error) {
	g := bucket.GranularityForRange(r)

	series, err := s.store.ReadSeries(ctx, g, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	// A short range can still predate the fine retention horizon
	// entirely; hourly data covers it instead.
	if g == bucket.Fine && len(series) == 0 {
		g = bucket.Medium
		if series, err = s.store.ReadSeries(ctx, g, r.Start, r.End); err != nil {
			return nil, err
		}
	}

	label, series := coarsen(g, series)
	if series == nil {
		series = []storage.SeriesPoint{}
	}
	return &TrafficSeries{Granularity: label, Data: series}, nil
}

// GetTotalHits sums the same series GetTraffic serves, so the two always
// agree for a given range.
func (s *Service) GetTotalHits(ctx context.Context, r bucket.TimeRange) (int64, error) {
	series, err := s.GetTraffic(ctx, r)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, pt := range series.Data {
		total += pt.Hits
	}
	return total, nil
}

// GetStats returns the hit series for a single image key, using the same
// granularity selection and super-bucketing as GetTraffic.
func (s *Service) GetStats(ctx context.Context, key string, r bucket.TimeRange) (*TrafficSeries, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	g := bucket.GranularityForRange(r)

	series, err := s.store.ReadKeySeries(ctx, g, key, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	if g == bucket.Fine && len(series) == 0 {
		g = bucket.Medium
		if series, err = s.store.ReadKeySeries(ctx, g, key, r.Start, r.End); err != nil {
			return nil, err
		}
	}

	label, series := coarsen(g, series)
	if series == nil {
		series = []storage.SeriesPoint{}
	}
	return &TrafficSeries{Granularity: label, Data: series}, nil
}

// GetTopImages returns the most-hit keys over a range, descending by
// total with ties broken by key order.
//
// A range straddling the fine retention horizon unions hourly and
// 10-minute data. The union boundary is the first hour boundary at or
// after the retention cutoff: hourly buckets strictly before it and fine
// buckets at or after it can never overlap, so no hit is counted twice.
func (s *Service) GetTopImages(ctx context.Context, r bucket.TimeRange, limit int) ([]storage.KeyTotal, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultTopLimit
	}

	cutoff := bucket.AlignDown(s.now().Unix()-int64(s.retentionWindow/time.Second), bucket.FinePeriod)
	boundary := bucket.AlignUp(cutoff, bucket.MediumPeriod)

	var parts [][]storage.KeyTotal
	switch {
	case r.Start >= boundary:
		totals, err := s.store.ReadKeyTotals(ctx, bucket.Fine, r.Start, r.End)
		if err != nil {
			return nil, err
		}
		parts = append(parts, totals)

	case r.End < boundary:
		totals, err := s.store.ReadKeyTotals(ctx, bucket.Medium, r.Start, r.End)
		if err != nil {
			return nil, err
		}
		parts = append(parts, totals)

	default:
		older, err := s.store.ReadKeyTotals(ctx, bucket.Medium, r.Start, boundary-1)
		if err != nil {
			return nil, err
		}
		recent, err := s.store.ReadKeyTotals(ctx, bucket.Fine, boundary, r.End)
		if err != nil {
			return nil, err
		}
		parts = append(parts, older, recent)
	}

	return mergeTopKeys(parts, limit), nil
}

func mergeTopKeys(parts [][]storage.KeyTotal, limit int) []storage.KeyTotal {
	sums := make(map[string]int64)
	for _, part := range parts {
		for _, kt := range part {
			sums[kt.Key] += kt.Total
		}
	}

	merged := make([]storage.KeyTotal, 0, len(sums))
	for key, total := range sums {
		merged = append(merged, storage.KeyTotal{Key: key, Total: total})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Total != merged[j].Total {
			return merged[i].Total > merged[j].Total
		}
		return merged[i].Key < merged[j].Key
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
