package dashboard

import "sort"

// MaxChartPoints caps the point budget regardless of the requested
// rendering width.
const MaxChartPoints = 800

// Downsample reduces a windowed series to at most maxPoints points for
// display. timestamps must be ascending with hits parallel to it.
//
// Points outside [minX, maxX] are dropped; if the remaining slice fits
// the budget it is returned as-is, otherwise it is partitioned into
// contiguous chunks that each emit (first timestamp, mean of hits).
// The result is deterministic and idempotent: feeding an output back in
// with the same window and budget returns it unchanged. The input is
// never mutated.
func Downsample(timestamps []int64, hits []float64, minX, maxX int64, maxPoints int) ([]int64, []float64) {
	if maxPoints <= 0 || maxPoints > MaxChartPoints {
		maxPoints = MaxChartPoints
	}

	lo := sort.Search(len(timestamps), func(i int) bool { return timestamps[i] >= minX })
	hi := sort.Search(len(timestamps), func(i int) bool { return timestamps[i] > maxX })

	ts, vals := timestamps[lo:hi], hits[lo:hi]
	if len(ts) <= maxPoints {
		return ts, vals
	}

	chunk := (len(ts) + maxPoints - 1) / maxPoints

	outTs := make([]int64, 0, maxPoints)
	outVals := make([]float64, 0, maxPoints)
	for i := 0; i < len(ts); i += chunk {
		j := i + chunk
		if j > len(ts) {
			j = len(ts)
		}

		var sum float64
		for _, v := range vals[i:j] {
			sum += v
		}

		outTs = append(outTs, ts[i])
		outVals = append(outVals, sum/float64(j-i))
	}
	return outTs, outVals
}
