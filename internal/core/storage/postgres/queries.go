package postgres

import (
	"fmt"

	"github.com/webpbin/trafficd/internal/core/bucket"
)

// One counter table per granularity. The primary key makes the
// ON CONFLICT upsert the atomic insert-or-increment the write path
// relies on; the bucket_start index serves range reads and retention
// deletes.
func tableFor(g bucket.Granularity) string {
	switch g {
	case bucket.Fine:
		return "hit_buckets_10min"
	case bucket.Medium:
		return "hit_buckets_hourly"
	default:
		return "hit_buckets_daily"
	}
}

const (
	queryIncrementTpl = `
		INSERT INTO %[1]s (image_key, bucket_start, hits)
		VALUES ($1, $2, 1)
		ON CONFLICT (image_key, bucket_start)
		DO UPDATE SET hits = %[1]s.hits + 1
	`

	queryReadSeriesTpl = `
		SELECT bucket_start, SUM(hits) AS hits
		FROM %s
		WHERE bucket_start >= $1 AND bucket_start <= $2
		GROUP BY bucket_start
		ORDER BY bucket_start ASC
	`

	queryReadKeySeriesTpl = `
		SELECT bucket_start, hits
		FROM %s
		WHERE image_key = $1 AND bucket_start >= $2 AND bucket_start <= $3
		ORDER BY bucket_start ASC
	`

	queryReadKeyTotalsTpl = `
		SELECT image_key, SUM(hits) AS total
		FROM %s
		WHERE bucket_start >= $1 AND bucket_start <= $2
		GROUP BY image_key
		ORDER BY total DESC, image_key ASC
	`

	queryDeleteBeforeTpl = `DELETE FROM %s WHERE bucket_start < $1`
)

func incrementQuery(g bucket.Granularity) string {
	return fmt.Sprintf(queryIncrementTpl, tableFor(g))
}

func readSeriesQuery(g bucket.Granularity) string {
	return fmt.Sprintf(queryReadSeriesTpl, tableFor(g))
}

func readKeySeriesQuery(g bucket.Granularity) string {
	return fmt.Sprintf(queryReadKeySeriesTpl, tableFor(g))
}

func readKeyTotalsQuery(g bucket.Granularity) string {
	return fmt.Sprintf(queryReadKeyTotalsTpl, tableFor(g))
}

func deleteBeforeQuery(g bucket.Granularity) string {
	return fmt.Sprintf(queryDeleteBeforeTpl, tableFor(g))
}
