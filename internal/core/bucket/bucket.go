package bucket

import "errors"

// Granularity identifies one of the pre-aggregated rollup resolutions.
type Granularity int

const (
	// Fine holds 10-minute buckets and is pruned by the retention sweeper.
	Fine Granularity = iota
	// Medium holds hourly buckets and is never pruned.
	Medium
	// Coarse holds daily buckets and is never pruned.
	Coarse
)

// Bucket periods in seconds. Every stored bucket_start is an exact
// multiple of its granularity's period.
const (
	FinePeriod   int64 = 600
	MediumPeriod int64 = 3600
	CoarsePeriod int64 = 86400
)

// All lists granularities finest-first. The dashboard cache and the
// top-N read path both depend on this order.
var All = []Granularity{Fine, Medium, Coarse}

// Period returns the bucket width in seconds.
func (g Granularity) Period() int64 {
	switch g {
	case Fine:
		return FinePeriod
	case Medium:
		return MediumPeriod
	default:
		return CoarsePeriod
	}
}

// Label returns the native granularity tag used in API responses.
// Super-bucketed responses derive their own "Nhourly"/"Ndaily" labels.
func (g Granularity) Label() string {
	switch g {
	case Fine:
		return "10min"
	case Medium:
		return "hourly"
	default:
		return "daily"
	}
}

func (g Granularity) String() string {
	return g.Label()
}

// AlignDown truncates an epoch-second timestamp to its bucket boundary.
// Writes and reads use the same alignment so a boundary computed at
// ingestion matches the boundary used to group reads.
func AlignDown(ts, period int64) int64 {
	return ts - ts%period
}

// AlignUp returns the first bucket boundary at or after ts.
func AlignUp(ts, period int64) int64 {
	if ts%period == 0 {
		return ts
	}
	return AlignDown(ts, period) + period
}

// GranularityForRange picks the coarsest resolution whose native bucket
// size keeps the point count for the requested span bounded. The
// dashboard mirrors this choice client-side when deciding which cache
// slot a fetch belongs to.
func GranularityForRange(r TimeRange) Granularity {
	span := r.End - r.Start
	switch {
	case span <= CoarsePeriod:
		return Fine
	case span <= 30*CoarsePeriod:
		return Medium
	default:
		return Coarse
	}
}

// ErrInvalidRange is returned when a query range ends before it starts.
var ErrInvalidRange = errors.New("time range end precedes start")

// TimeRange is an inclusive [Start, End] window in epoch seconds.
type TimeRange struct {
	Start int64
	End   int64
}

func (r TimeRange) Validate() error {
	if r.End < r.Start {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether other lies fully within r.
func (r TimeRange) Contains(other TimeRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}
