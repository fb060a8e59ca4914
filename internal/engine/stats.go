package engine

import "math"

// Mean returns the arithmetic mean of data, or 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev returns the population standard deviation of data around the
// given mean. The variance divides by N, not N-1: the repetitions are the
// whole population of trials, not a sample from a larger one.
func StdDev(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range data {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

// Statistics returns the mean and population standard deviation of data.
func Statistics(data []float64) (mean, stdev float64) {
	mean = Mean(data)
	stdev = StdDev(data, mean)
	return mean, stdev
}
