package query

import (
	"fmt"

	"github.com/webpbin/trafficd/internal/core/bucket"
	"github.com/webpbin/trafficd/internal/core/storage"
)

// Super-bucketing thresholds: once the actual data span (min to max
// bucket present, not the requested span) outgrows these, adjacent native
// buckets are merged so the point count stays near a fixed target
// (~168 points for hourly data, ~90 for daily).
const (
	mediumSuperSpanDays = 7
	coarseSuperSpanDays = 90
)

// coarsen applies the adaptive super-bucket rule to a native-resolution
// series and returns the response granularity label alongside the
// (possibly merged) series. Basing the rule on the actual span avoids
// both the one-giant-bucket failure mode when data is sparse and the
// too-many-points mode when data is dense and old.
func coarsen(g bucket.Granularity, series []storage.SeriesPoint) (string, []storage.SeriesPoint) {
	if len(series) == 0 {
		return g.Label(), series
	}

	actualSpanDays := float64(series[len(series)-1].Bucket-series[0].Bucket) / float64(bucket.CoarsePeriod)

	switch g {
	case bucket.Medium:
		if actualSpanDays <= mediumSuperSpanDays {
			return g.Label(), series
		}
		n := int64(actualSpanDays) / mediumSuperSpanDays
		if n <= 1 {
			return g.Label(), series
		}
		return fmt.Sprintf("%dhourly", n), mergeBuckets(series, n*bucket.MediumPeriod)

	case bucket.Coarse:
		if actualSpanDays <= coarseSuperSpanDays {
			return g.Label(), series
		}
		n := int64(actualSpanDays) / coarseSuperSpanDays
		if n <= 1 {
			return g.Label(), series
		}
		return fmt.Sprintf("%ddaily", n), mergeBuckets(series, n*bucket.CoarsePeriod)

	default:
		return g.Label(), series
	}
}

// mergeBuckets groups an ascending series into super-buckets by integer
// floor-division of bucket_start. Floor-division is monotone, so the
// output stays ascending without a sort.
func mergeBuckets(series []storage.SeriesPoint, super int64) []storage.SeriesPoint {
	merged := make([]storage.SeriesPoint, 0, len(series))
	for _, pt := range series {
		start := bucket.AlignDown(pt.Bucket, super)
		if n := len(merged); n > 0 && merged[n-1].Bucket == start {
			merged[n-1].Hits += pt.Hits
		} else {
			merged = append(merged, storage.SeriesPoint{Bucket: start, Hits: pt.Hits})
		}
	}
	return merged
}
