package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/webpbin/trafficd/internal/core/bucket"
	"github.com/webpbin/trafficd/internal/core/storage"
	"github.com/webpbin/trafficd/internal/retention"
)

// Service is the hit ingestion API. It fans each hit out into every
// rollup granularity and opportunistically triggers the retention
// sweeper. Sweep timing state is owned per instance, so independent
// instances never share it.
type Service struct {
	store   storage.RollupStore
	sweeper *retention.Sweeper

	now func() time.Time

	mu        sync.Mutex
	lastSweep int64
}

func NewService(store storage.RollupStore, sweeper *retention.Sweeper) *Service {
	if store == nil {
		panic("ingest: store must not be nil")
	}
	if sweeper == nil {
		panic("ingest: sweeper must not be nil")
	}
	return &Service{
		store:   store,
		sweeper: sweeper,
		now:     time.Now,
	}
}

// RecordHit records one hit for an image key across all granularities.
//
// The three increments are independent — no transaction spans them. Each
// granularity is independently useful, so a failed increment is logged
// and the rest proceed; a dropped count is acceptable data loss and is
// never surfaced to the viewer who triggered it.
func (s *Service) RecordHit(ctx context.Context, key string) {
	now := s.now().Unix()

	for _, g := range bucket.All {
		if err := s.store.Increment(ctx, g, key, now); err != nil {
			slog.Error("Failed to record hit",
				"granularity", g,
				"key", key,
				"error", err)
		}
	}

	s.maybeSweep(ctx, now)
}

// maybeSweep runs the retention sweeper at most once per fine period,
// amortizing deletion cost without a background timer. lastSweep advances
// before the sweep runs so concurrent writers can't pile on.
func (s *Service) maybeSweep(ctx context.Context, now int64) {
	s.mu.Lock()
	if now-s.lastSweep < bucket.FinePeriod {
		s.mu.Unlock()
		return
	}
	s.lastSweep = now
	s.mu.Unlock()

	if err := s.sweeper.Sweep(ctx, now); err != nil {
		slog.Error("Retention sweep failed", "error", err)
	}
}
