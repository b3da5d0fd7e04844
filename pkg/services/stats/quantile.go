package stats

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile of xs using linear interpolation
// between the two nearest ranks. xs is copied, never modified.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	frac := pos - float64(lower)
	if frac == 0 || lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// Bounds is the normal range for one group. Values outside [Lower, Upper]
// are outliers.
type Bounds struct {
	Q1    float64
	Q3    float64
	Lower float64
	Upper float64
}

// NewBounds computes the IQR fence for xs with multiplier k.
func NewBounds(xs []float64, k float64) Bounds {
	q1 := Quantile(xs, 0.25)
	q3 := Quantile(xs, 0.75)
	iqr := q3 - q1
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		Lower: q1 - k*iqr,
		Upper: q3 + k*iqr,
	}
}

func (b Bounds) IQR() float64 {
	return b.Q3 - b.Q1
}

func (b Bounds) Outside(v float64) bool {
	return v < b.Lower || v > b.Upper
}
