// Package stats holds the small numeric helpers shared by the assessors:
// quantiles, outlier-trimmed means, moments, histograms and entropy.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// iqrFence is the Tukey fence multiplier.
const iqrFence = 1.5

// Sorted returns a sorted copy of values.
func Sorted(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between closest ranks. sorted must be ascending and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Quartiles returns Q1, median and Q3.
func Quartiles(values []float64) (q1, median, q3 float64, err error) {
	if len(values) == 0 {
		return 0, 0, 0, ErrEmpty
	}
	s := Sorted(values)
	return Quantile(s, 0.25), Quantile(s, 0.5), Quantile(s, 0.75), nil
}

// IQRBounds returns the Tukey fences [Q1-1.5*IQR, Q3+1.5*IQR].
func IQRBounds(values []float64) (lower, upper float64, err error) {
	q1, _, q3, err := Quartiles(values)
	if err != nil {
		return 0, 0, err
	}
	iqr := q3 - q1
	return q1 - iqrFence*iqr, q3 + iqrFence*iqr, nil
}

// FilterOutliers keeps the values inside the Tukey fences, preserving order.
// When nothing survives the original values are returned.
func FilterOutliers(values []float64) []float64 {
	lower, upper, err := IQRBounds(values)
	if err != nil {
		return values
	}
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return values
	}
	return kept
}

// TrimmedMean averages values after discarding IQR outliers. It returns 0
// for an empty input.
func TrimmedMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Mean(FilterOutliers(values))
}

// Mean returns the arithmetic mean, 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MinMax returns the smallest and largest value.
func MinMax(values []float64) (lo, hi float64, err error) {
	if len(values) == 0 {
		return 0, 0, ErrEmpty
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, nil
}

// centralSums returns Σ(x-mean)^2, Σ(x-mean)^3 and Σ(x-mean)^4.
func centralSums(values []float64) (m2, m3, m4 float64) {
	mean := Mean(values)
	for _, v := range values {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	return m2, m3, m4
}

// StdDev returns the sample standard deviation (n-1 denominator).
func StdDev(values []float64) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, fmt.Errorf("std of %d values: %w", n, ErrUndefined)
	}
	m2, _, _ := centralSums(values)
	std := math.Sqrt(m2 / float64(n-1))
	if !finite(std) {
		return 0, fmt.Errorf("std overflows: %w", ErrUndefined)
	}
	return std, nil
}

// Skewness returns the adjusted Fisher-Pearson sample skewness. It is
// undefined for fewer than three values or zero variance.
func Skewness(values []float64) (float64, error) {
	n := float64(len(values))
	if n < 3 {
		return 0, fmt.Errorf("skewness of %d values: %w", len(values), ErrUndefined)
	}
	m2, m3, _ := centralSums(values)
	if m2 == 0 {
		return 0, fmt.Errorf("skewness with zero variance: %w", ErrUndefined)
	}
	if !finite(m2) || !finite(m3) {
		return 0, fmt.Errorf("skewness overflows: %w", ErrUndefined)
	}
	m2 /= n
	m3 /= n
	g1 := m3 / math.Pow(m2, 1.5)
	skew := math.Sqrt(n*(n-1)) / (n - 2) * g1
	if !finite(skew) {
		return 0, fmt.Errorf("skewness overflows: %w", ErrUndefined)
	}
	return skew, nil
}

// Kurtosis returns the bias-corrected sample excess kurtosis. It is
// undefined for fewer than four values or zero variance.
func Kurtosis(values []float64) (float64, error) {
	n := float64(len(values))
	if n < 4 {
		return 0, fmt.Errorf("kurtosis of %d values: %w", len(values), ErrUndefined)
	}
	m2, _, m4 := centralSums(values)
	if m2 == 0 {
		return 0, fmt.Errorf("kurtosis with zero variance: %w", ErrUndefined)
	}
	if !finite(m2) || !finite(m4) {
		return 0, fmt.Errorf("kurtosis overflows: %w", ErrUndefined)
	}
	num := n * (n + 1) * (n - 1) * m4
	den := (n - 2) * (n - 3) * m2 * m2
	adj := 3 * (n - 1) * (n - 1) / ((n - 2) * (n - 3))
	kurt := num/den - adj
	if !finite(kurt) {
		return 0, fmt.Errorf("kurtosis overflows: %w", ErrUndefined)
	}
	return kurt, nil
}

// finite reports whether v is neither infinite nor NaN.
func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
