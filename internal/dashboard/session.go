package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webpbin/trafficd/internal/core/bucket"
)

// Session owns one dashboard's LOD cache and its single outstanding
// fetch. Sessions are not shared: every open dashboard builds its own.
type Session struct {
	id        string
	fetcher   SeriesFetcher
	cache     *Cache
	maxPoints int

	now func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	fetchSeq uint64
}

func NewSession(fetcher SeriesFetcher, maxPoints int) *Session {
	if fetcher == nil {
		panic("dashboard: fetcher must not be nil")
	}
	if maxPoints <= 0 || maxPoints > MaxChartPoints {
		maxPoints = MaxChartPoints
	}
	return &Session{
		id:        uuid.New().String(),
		fetcher:   fetcher,
		cache:     NewCache(),
		maxPoints: maxPoints,
		now:       time.Now,
	}
}

// LoadRecent performs the full-range load (initial page view or explicit
// reset): fetch the last N days synchronously and populate the matching
// cache slot. On failure the cache keeps whatever it had.
func (s *Session) LoadRecent(ctx context.Context, days int) error {
	now := s.now().Unix()
	r := bucket.TimeRange{Start: now - int64(days)*bucket.CoarsePeriod, End: now}

	timestamps, hits, err := s.fetcher.FetchSeries(ctx, r)
	if err != nil {
		return err
	}

	s.cache.Put(&Entry{
		Granularity: bucket.GranularityForRange(r),
		Covered:     r,
		Timestamps:  timestamps,
		Hits:        hits,
	})
	return nil
}

// Viewport renders the [minX, maxX] window. When a cache slot fully
// covers it the result is served synchronously and exact is true. On a
// miss the best populated slot is returned as a visual stand-in, exact
// is false, and a background fetch for the window's target granularity
// is started — superseding any fetch already in flight.
func (s *Session) Viewport(minX, maxX int64) (timestamps []int64, hits []float64, exact bool) {
	r := bucket.TimeRange{Start: minX, End: maxX}

	if e := s.cache.BestFor(r); e != nil {
		timestamps, hits = Downsample(e.Timestamps, e.Hits, minX, maxX, s.maxPoints)
		return timestamps, hits, true
	}

	ctx, seq := s.beginRefresh()
	go s.runRefresh(ctx, seq, r)

	if e := s.cache.AnyPopulated(); e != nil {
		timestamps, hits = Downsample(e.Timestamps, e.Hits, minX, maxX, s.maxPoints)
	}
	return timestamps, hits, false
}

// beginRefresh cancels the in-flight fetch, if any, and reserves the
// next fetch generation. Only one fetch per session is ever outstanding.
func (s *Session) beginRefresh() (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.fetchSeq++
	return ctx, s.fetchSeq
}

// finishRefresh applies a completed fetch unless a newer viewport change
// superseded it; stale responses are discarded, never applied.
func (s *Session) finishRefresh(seq uint64, e *Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		return false
	}
	s.cache.Put(e)
	return true
}

func (s *Session) runRefresh(ctx context.Context, seq uint64, r bucket.TimeRange) {
	timestamps, hits, err := s.fetcher.FetchSeries(ctx, r)
	if err != nil {
		// Keep rendering stale data; a failed or cancelled refresh is
		// only ever a transient loading state, not an error state.
		slog.Debug("Dashboard refresh failed", "session", s.id, "error", err)
		return
	}

	s.finishRefresh(seq, &Entry{
		Granularity: bucket.GranularityForRange(r),
		Covered:     r,
		Timestamps:  timestamps,
		Hits:        hits,
	})
}
