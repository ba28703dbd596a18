package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/webpbin/trafficd/internal/core/bucket"
	"github.com/webpbin/trafficd/internal/core/storage"
)

type fakeStore struct {
	storage.RollupStore

	deletes []struct {
		g      bucket.Granularity
		cutoff int64
	}
	deleteErr error
}

func (f *fakeStore) DeleteBefore(_ context.Context, g bucket.Granularity, cutoff int64) error {
	f.deletes = append(f.deletes, struct {
		g      bucket.Granularity
		cutoff int64
	}{g, cutoff})
	return f.deleteErr
}

func TestSweepDeletesOnlyExpiredFineBuckets(t *testing.T) {
	store := &fakeStore{}
	sweeper := NewSweeper(store, 24*time.Hour)
	now := int64(1717000123)

	require.NoError(t, sweeper.Sweep(context.Background(), now))

	require.Len(t, store.deletes, 1)
	require.Equal(t, bucket.Fine, store.deletes[0].g)

	want := bucket.AlignDown(now-24*3600, bucket.FinePeriod)
	require.Equal(t, want, store.deletes[0].cutoff)
	require.Zero(t, store.deletes[0].cutoff%bucket.FinePeriod)
}

func TestSweepPropagatesStoreError(t *testing.T) {
	store := &fakeStore{deleteErr: errors.New("connection refused")}
	sweeper := NewSweeper(store, 24*time.Hour)

	err := sweeper.Sweep(context.Background(), 1717000123)
	require.ErrorContains(t, err, "retention sweep")
}

func TestNewSweeperDefaultsWindow(t *testing.T) {
	sweeper := NewSweeper(&fakeStore{}, 0)
	require.Equal(t, DefaultWindow, sweeper.Window())
}

func TestCutoffIsStableWithinFinePeriod(t *testing.T) {
	sweeper := NewSweeper(&fakeStore{}, 24*time.Hour)

	// Two sweeps within the same fine period compute the same cutoff.
	base := int64(1717000200)
	require.Equal(t, sweeper.Cutoff(base), sweeper.Cutoff(base+599))
}
