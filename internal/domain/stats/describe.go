package stats

import (
	"fmt"
	"math"
)

// Distribution shapes.
const (
	ShapeNormal      = "normal"
	ShapeRightSkewed = "right_skewed"
	ShapeLeftSkewed  = "left_skewed"
	ShapeUnknown     = "unknown"
)

// Shape thresholds on skewness and excess kurtosis magnitude.
const (
	skewThreshold = 0.5
	kurtThreshold = 1.0
)

// Summary describes a numeric sample.
type Summary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Shape    string  `json:"shape"`
}

// Describe summarizes values. Any undefined statistic makes the whole
// summary unavailable and returns the underlying error.
func Describe(values []float64) (Summary, error) {
	lo, hi, err := MinMax(values)
	if err != nil {
		return Summary{}, err
	}
	q1, median, q3, err := Quartiles(values)
	if err != nil {
		return Summary{}, err
	}
	std, err := StdDev(values)
	if err != nil {
		return Summary{}, err
	}
	skew, err := Skewness(values)
	if err != nil {
		return Summary{}, err
	}
	kurt, err := Kurtosis(values)
	if err != nil {
		return Summary{}, err
	}
	mean := Mean(values)
	for _, v := range []float64{lo, hi, mean, q1, median, q3} {
		if !finite(v) {
			return Summary{}, fmt.Errorf("summary overflows: %w", ErrUndefined)
		}
	}
	return Summary{
		Min:      lo,
		Max:      hi,
		Mean:     mean,
		Median:   median,
		Std:      std,
		Q1:       q1,
		Q3:       q3,
		Skewness: skew,
		Kurtosis: kurt,
		Shape:    ShapeOf(skew, kurt),
	}, nil
}

// ShapeOf labels a distribution from its skewness and excess kurtosis.
func ShapeOf(skew, kurt float64) string {
	switch {
	case math.Abs(skew) < skewThreshold && math.Abs(kurt) < kurtThreshold:
		return ShapeNormal
	case skew >= skewThreshold:
		return ShapeRightSkewed
	case skew <= -skewThreshold:
		return ShapeLeftSkewed
	default:
		return ShapeUnknown
	}
}

// Bucket is one histogram bin. Upper is exclusive except for the last bin.
type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits values into bins equal-width buckets spanning [min, max].
// A constant sample is centred in a unit-wide range.
func Histogram(values []float64, bins int) ([]Bucket, error) {
	if bins < 1 {
		return nil, ErrUndefined
	}
	lo, hi, err := MinMax(values)
	if err != nil {
		return nil, err
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	if !finite(width) || !finite(lo) || !finite(hi) {
		return nil, fmt.Errorf("histogram width overflows: %w", ErrUndefined)
	}
	out := make([]Bucket, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		out[i].Count++
	}
	return out, nil
}

// Entropy returns the Shannon entropy (natural log) of a frequency table.
func Entropy(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}

// NormalizedEntropy divides Entropy by log(k) for k distinct categories.
// With a single category the normalizer is 1 and the result is 0.
func NormalizedEntropy(counts []int) float64 {
	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}
	norm := 1.0
	if distinct > 1 {
		norm = math.Log(float64(distinct))
	}
	return Entropy(counts) / norm
}
