package stat

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyDataset is returned when the dataset has no elements.
	ErrEmptyDataset = errors.New("cannot calculate percentile of empty dataset")

	// ErrPercentileOutOfRange is returned when the requested percentile is
	// outside [0, 100]. Both bounds are valid.
	ErrPercentileOutOfRange = errors.New("percentile must be between 0 and 100")
)

// Percentile calculates the given percentile of values using linear
// interpolation between the two closest ranks (the R-7 method used by most
// statistics packages).
//
// The input slice is never mutated; sorting happens on a private copy, so the
// result is independent of the input order. Percentile 0 returns the minimum
// and 100 returns the maximum, both as exact order statistics.
//
// NaN elements sort after every other value, including +Inf, so a dataset
// containing NaN yields a deterministic result rather than an
// ordering-dependent one.
func Percentile(values []float64, percentile float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyDataset
	}

	if percentile < 0.0 || percentile > 100.0 {
		return 0, ErrPercentileOutOfRange
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return lessNaNLast(sorted[i], sorted[j])
	})

	index := (percentile / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower], nil
	}

	weight := index - float64(lower)
	return sorted[lower]*(1.0-weight) + sorted[upper]*weight, nil
}

// lessNaNLast orders floats ascending with NaN greater than everything,
// giving sort a total order even on malformed input.
func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
