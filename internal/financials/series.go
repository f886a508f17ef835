package financials

import (
	"github.com/shopspring/decimal"
)

// Sparkline bounds used by the financial overview.
const (
	SparklineMin = 12
	SparklineMax = 42
)

// Point is one dated value.
type Point struct {
	Date  string
	Value float64
}

// Series is a chart-ready pair of parallel slices.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// YearLabel returns the first four characters of a date, or "".
func YearLabel(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// BuildSeries maps points to year labels and values, preserving order.
func BuildSeries(points []Point) Series {
	s := Series{
		Labels: make([]string, 0, len(points)),
		Values: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		s.Labels = append(s.Labels, YearLabel(p.Date))
		s.Values = append(s.Values, p.Value)
	}
	return s
}

// ScaleSeries maps values linearly onto integers in [lo, hi]. All-equal
// input maps to the midpoint and empty input to an empty slice.
func ScaleSeries(values []float64, lo, hi int) []int {
	out := make([]int, 0, len(values))
	if len(values) == 0 {
		return out
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		minV = min(minV, v)
		maxV = max(maxV, v)
	}

	if minV == maxV {
		mid := roundInt((float64(lo) + float64(hi)) / 2)
		for range values {
			out = append(out, mid)
		}
		return out
	}

	span := float64(hi - lo)
	for _, v := range values {
		ratio := (v - minV) / (maxV - minV)
		out = append(out, roundInt(float64(lo)+ratio*span))
	}
	return out
}

// Sparkline scales values onto the default sparkline bounds.
func Sparkline(values []float64) []int {
	return ScaleSeries(values, SparklineMin, SparklineMax)
}

func roundInt(v float64) int {
	return int(decimal.NewFromFloat(v).Round(0).IntPart())
}
