package domain

import "time"

// Prediction is one forecasted occupancy row with its confidence interval.
// Bounds are clipped to the valid occupancy range [0, 1].
type Prediction struct {
	Date               time.Time `json:"date"`
	RoomType           string    `json:"room_type"`
	PredictedOccupancy float64   `json:"predicted_occupancy"`
	LowerBound         float64   `json:"lower_bound"`
	UpperBound         float64   `json:"upper_bound"`
}

// FeatureImportance ranks one model feature by its contribution to predictions.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ForecastResponse wraps a forecast with metadata.
type ForecastResponse struct {
	Data    []Prediction `json:"data"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
}
