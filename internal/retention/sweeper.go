package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/webpbin/trafficd/internal/core/bucket"
	"github.com/webpbin/trafficd/internal/core/storage"
)

// DefaultWindow is how much fine-grained history survives a sweep.
const DefaultWindow = 24 * time.Hour

// Sweeper prunes expired fine-granularity rows. Hourly and daily rollups
// are never pruned; their row count is bounded in practice by the coarser
// bucket period. The sweeper has no scheduler of its own — the ingestion
// service invokes it opportunistically from the write path.
type Sweeper struct {
	store  storage.RollupStore
	window time.Duration
}

func NewSweeper(store storage.RollupStore, window time.Duration) *Sweeper {
	if store == nil {
		panic("retention: store must not be nil")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Sweeper{store: store, window: window}
}

// Cutoff returns the exclusive bucket_start bound for a sweep at now:
// rows with bucket_start < Cutoff(now) are expired. The bound is aligned
// to the fine period so it matches stored bucket boundaries exactly.
func (s *Sweeper) Cutoff(now int64) int64 {
	return bucket.AlignDown(now-int64(s.window/time.Second), bucket.FinePeriod)
}

// Window returns the retention horizon for fine-grained rows.
func (s *Sweeper) Window() time.Duration {
	return s.window
}

// Sweep deletes expired fine-granularity rows. Rows written at or after
// the cutoff are untouched, so concurrent increments are unaffected.
func (s *Sweeper) Sweep(ctx context.Context, now int64) error {
	cutoff := s.Cutoff(now)
	if err := s.store.DeleteBefore(ctx, bucket.Fine, cutoff); err != nil {
		return fmt.Errorf("retention sweep: %w", err)
	}

	slog.Info("[Sweeper] Pruned expired fine buckets", "cutoff", cutoff)
	return nil
}
