package visualize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateHistory(t *testing.T) {
	t.Run("returns exactly the requested number of points", func(t *testing.T) {
		assert.Len(t, GenerateHistory(20, DefaultHistoryPoints), 24)
		assert.Len(t, GenerateHistory(20, 3), 3)
	})

	t.Run("timestamps strictly increase one hour apart, ending now", func(t *testing.T) {
		before := time.Now()
		points := GenerateHistory(20, 24)
		after := time.Now()

		for i := 1; i < len(points); i++ {
			assert.Equal(t, time.Hour, points[i].Timestamp.Sub(points[i-1].Timestamp))
		}

		last := points[len(points)-1].Timestamp
		assert.False(t, last.Before(before))
		assert.False(t, last.After(after))
	})

	t.Run("values stay within the perturbation window and never go negative", func(t *testing.T) {
		for _, point := range GenerateHistory(2, 100) {
			assert.GreaterOrEqual(t, point.Value, 0.0)
			assert.LessOrEqual(t, point.Value, 7.0)
		}
	})

	t.Run("values are rounded to one decimal place", func(t *testing.T) {
		for _, point := range GenerateHistory(20, 24) {
			scaled := point.Value * 10
			assert.InDelta(t, scaled, float64(int64(scaled+0.5)), 1e-9)
		}
	})
}
