package bucket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignDown(t *testing.T) {
	cases := []struct {
		name   string
		ts     int64
		period int64
		want   int64
	}{
		{"mid fine bucket", 1717000123, FinePeriod, 1717000200 - FinePeriod},
		{"exact boundary unchanged", 1716999600, FinePeriod, 1716999600},
		{"hourly", 1717003999, MediumPeriod, 1717002000},
		{"daily", 1717003999, CoarsePeriod, 1716940800},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AlignDown(tc.ts, tc.period)
			require.Equal(t, tc.want, got)
			require.Zero(t, got%tc.period, "aligned value must be a period multiple")
		})
	}
}

func TestAlignDownIdempotent(t *testing.T) {
	for _, period := range []int64{FinePeriod, MediumPeriod, CoarsePeriod} {
		for _, ts := range []int64{0, 1, 599, 600, 1717000123, 1999999999} {
			once := AlignDown(ts, period)
			require.Equal(t, once, AlignDown(once, period))
		}
	}
}

func TestAlignUp(t *testing.T) {
	require.Equal(t, int64(1200), AlignUp(601, FinePeriod))
	require.Equal(t, int64(600), AlignUp(600, FinePeriod))
	require.Equal(t, int64(3600), AlignUp(1, MediumPeriod))
}

func TestGranularityForRange(t *testing.T) {
	now := int64(1717000000)

	cases := []struct {
		name string
		span int64
		want Granularity
	}{
		{"one hour", 3600, Fine},
		{"exactly one day", CoarsePeriod, Fine},
		{"just over one day", CoarsePeriod + 1, Medium},
		{"one week", 7 * CoarsePeriod, Medium},
		{"exactly thirty days", 30 * CoarsePeriod, Medium},
		{"over thirty days", 30*CoarsePeriod + 1, Coarse},
		{"one year", 365 * CoarsePeriod, Coarse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := TimeRange{Start: now - tc.span, End: now}
			require.Equal(t, tc.want, GranularityForRange(r))
		})
	}
}

func TestTimeRangeValidate(t *testing.T) {
	require.NoError(t, TimeRange{Start: 10, End: 20}.Validate())
	require.NoError(t, TimeRange{Start: 10, End: 10}.Validate())
	require.ErrorIs(t, TimeRange{Start: 20, End: 10}.Validate(), ErrInvalidRange)
}

func TestTimeRangeContains(t *testing.T) {
	outer := TimeRange{Start: 100, End: 200}

	require.True(t, outer.Contains(TimeRange{Start: 100, End: 200}))
	require.True(t, outer.Contains(TimeRange{Start: 150, End: 160}))
	require.False(t, outer.Contains(TimeRange{Start: 99, End: 150}))
	require.False(t, outer.Contains(TimeRange{Start: 150, End: 201}))
}
