// Package aqi turns pollutant readings into Air Quality Index values,
// severity categories and one-step-ahead forecasts.
package aqi

import "math"

// Category is the human-readable severity band of an AQI value.
type Category string

const (
	Good         Category = "Good"
	Satisfactory Category = "Satisfactory"
	Moderate     Category = "Moderate"
	Poor         Category = "Poor"
	VeryPoor     Category = "Very Poor"
	Severe       Category = "Severe"
)

type band struct {
	upper    float64
	category Category
}

// Upper bounds are inclusive: a value sitting exactly on a bound belongs to
// the lower band.
var bands = []band{
	{50, Good},
	{100, Satisfactory},
	{200, Moderate},
	{300, Poor},
	{400, VeryPoor},
	{math.Inf(1), Severe},
}

// Classify maps an AQI value to its severity band. It never fails:
// negative values fall into Good and NaN falls through to Severe.
func Classify(value float64) Category {
	for _, b := range bands {
		if value <= b.upper {
			return b.category
		}
	}
	return Severe
}

// Rank is the position of c in the severity order, 0 for Good up to 5 for
// Severe, or -1 for an unknown label.
func (c Category) Rank() int {
	for i, b := range bands {
		if b.category == c {
			return i
		}
	}
	return -1
}

func (c Category) String() string { return string(c) }

// Categories lists every band in increasing severity.
func Categories() []Category {
	out := make([]Category, len(bands))
	for i, b := range bands {
		out[i] = b.category
	}
	return out
}
