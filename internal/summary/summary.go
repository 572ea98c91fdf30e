// Package summary derives per-day cross-population statistics from
// recorded activations and actions. See design doc Section 4.4.
package summary

import (
	"math"
	"sort"

	"github.com/talgya/contagent/internal/agents"
	"github.com/talgya/contagent/internal/entity"
)

// Day is the day-t summary record: five tables, one per statistic, each
// indexed by belief (or behaviour) arena index.
type Day struct {
	Day                int
	MeanActivations    []float64
	SDActivations      []float64
	MedianActivations  []float64
	NonzeroActivations []int
	NPerformers        []int
}

// Summarize computes the day-t record for the given population. It is a
// pure function of {activations_a[t], actions_a[t]}_a, per design doc
// Section 8, property 7.
func Summarize(population []*agents.Agent, beliefs []*entity.Belief, behaviours []*entity.Behaviour, t int) Day {
	d := Day{
		Day:                t,
		MeanActivations:    make([]float64, len(beliefs)),
		SDActivations:      make([]float64, len(beliefs)),
		MedianActivations:  make([]float64, len(beliefs)),
		NonzeroActivations: make([]int, len(beliefs)),
		NPerformers:        make([]int, len(behaviours)),
	}

	n := len(population)

	for b := range beliefs {
		values := make([]float64, n)
		for i, a := range population {
			var v float64
			if t < len(a.Activations) && b < len(a.Activations[t]) {
				v = a.Activations[t][b]
			}
			values[i] = v
			if v != 0 {
				d.NonzeroActivations[b]++
			}
		}

		d.MeanActivations[b] = mean(values)
		d.SDActivations[b] = sampleStdDev(values, d.MeanActivations[b])
		d.MedianActivations[b] = median(values)
	}

	for _, a := range population {
		if t < len(a.Actions) {
			h := a.Actions[t]
			if h >= 0 && h < len(behaviours) {
				d.NPerformers[h]++
			}
		}
	}

	return d
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev requires N >= 2, per design doc Section 4.4. With fewer than
// two agents it returns 0 rather than dividing by zero or NaN.
func sampleStdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0.0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// median sorts a copy of values and returns the element at index N/2 for
// odd N, or the mean of the two middle elements for even N — the correct
// 0-based median, not the source's off-by-one (design doc Section 9, Open
// Question 1).
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}
