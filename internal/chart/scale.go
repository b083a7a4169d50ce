package chart

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidDomain = errors.New("axis maximum must be a finite, non-negative number")

// AxisSpec describes the labeled gridlines of one vertical axis.
type AxisSpec struct {
	Max       float64
	Increment int
	// Factor is the power of ten the normalized ticks are scaled by. It is a
	// float so very large maxima do not overflow.
	Factor float64
	Ticks  []float64
}

// Scale picks tick values for an axis whose largest value is maxValue,
// following the 2-5-10 rule so any magnitude gets a handful of labels.
func Scale(maxValue float64) (AxisSpec, error) {
	if math.IsNaN(maxValue) || math.IsInf(maxValue, 0) || maxValue < 0 {
		return AxisSpec{}, fmt.Errorf("%w: %v", ErrInvalidDomain, maxValue)
	}

	normalized := maxValue
	factor := 1.0
	for normalized > 100 {
		normalized /= 10
		factor *= 10
	}

	increment := incrementFor(normalized)
	limit := int(math.Floor(normalized)) + 1

	ticks := make([]float64, 0, limit/increment+1)
	for k := 0; k*increment < limit; k++ {
		ticks = append(ticks, float64(k*increment)*factor)
	}

	return AxisSpec{
		Max:       maxValue,
		Increment: increment,
		Factor:    factor,
		Ticks:     ticks,
	}, nil
}

func incrementFor(normalized float64) int {
	switch {
	case normalized > 50:
		return 10
	case normalized > 20:
		return 5
	case normalized > 8:
		return 2
	default:
		return 1
	}
}
