package stat

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds basic descriptive statistics of a dataset.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Describe computes a Summary over values. A zero-length input yields a zero
// Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	return Summary{
		Count:  len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   stat.Mean(values, nil),
		StdDev: stat.StdDev(values, nil),
	}
}
