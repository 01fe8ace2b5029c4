package aqi

// LagWindowSize is how many of a sensor's most recent readings a forecast
// needs.
const LagWindowSize = 6

// LagFeatureCount is the width of the forecast model's input vector.
const LagFeatureCount = 4

// The forecast model was trained on the newest value, the two before it and
// the oldest value of a six-point window, in that order. The gap is part of
// the model's contract.
var lagIndices = [LagFeatureCount]int{5, 4, 3, 0}

// BuildLagFeatures takes a sensor's predicted AQI history newest first, as
// the store returns it, and returns the forecast input vector. Fewer than
// LagWindowSize values yields ErrInsufficientHistory.
func BuildLagFeatures(newestFirst []float64) ([]float64, error) {
	if len(newestFirst) < LagWindowSize {
		return nil, ErrInsufficientHistory
	}
	window := make([]float64, LagWindowSize)
	for i := 0; i < LagWindowSize; i++ {
		window[LagWindowSize-1-i] = newestFirst[i]
	}
	return LagFeaturesFromWindow(window)
}

// LagFeaturesFromWindow selects the lags from a window ordered oldest to
// newest. Only the last LagWindowSize values are considered.
func LagFeaturesFromWindow(window []float64) ([]float64, error) {
	if len(window) < LagWindowSize {
		return nil, ErrInsufficientHistory
	}
	window = window[len(window)-LagWindowSize:]

	features := make([]float64, LagFeatureCount)
	for i, idx := range lagIndices {
		features[i] = window[idx]
	}
	return features, nil
}
