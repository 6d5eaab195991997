package visualize

import (
	"math"
	"math/rand"
	"time"
)

// DefaultHistoryPoints is one point per hour over a day.
const DefaultHistoryPoints = 24

type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// GenerateHistory synthesises a time series from a single reading, standing
// in for a historical telemetry endpoint the backend does not offer. Points
// are an hour apart ending now, each the base reading perturbed by up to
// ±5, never negative. Deliberately unseeded, consecutive calls differ.
func GenerateHistory(base float64, count int) []HistoryPoint {
	now := time.Now()
	points := make([]HistoryPoint, 0, count)

	for i := count - 1; i >= 0; i-- {
		value := base + (rand.Float64()*10 - 5)
		if value < 0 {
			value = 0
		}

		points = append(points, HistoryPoint{
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			Value:     math.Round(value*10) / 10,
		})
	}

	return points
}
