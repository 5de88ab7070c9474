package travel

import (
	"testing"

	"github.com/mumbaitrails/trails_core/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSpeedKmh(t *testing.T) {
	tests := []struct {
		mode     models.TravelMode
		expected float64
	}{
		{models.ModeWalk, 4},
		{models.ModeMetro, 34},
		{models.ModeBus, 18},
		{models.ModeCar, 26},
		{models.ModeAuto, 20},
		{models.ModeMixed, 15},
		{models.TravelMode("SCOOTER"), 15}, // unknown falls back to MIXED
		{models.TravelMode(""), 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.expected, SpeedKmh(tt.mode))
		})
	}
}

func TestEstimateLeg(t *testing.T) {
	t.Run("Walking leg across south Mumbai", func(t *testing.T) {
		leg := EstimateLeg(19.0760, 72.8777, 19.0596, 72.8295, models.ModeWalk)
		assert.InDelta(t, 5.38, leg.DistanceKm, 0.01)
		assert.Equal(t, 81, leg.TimeMin)
	})

	t.Run("Metro is faster than walking over the same leg", func(t *testing.T) {
		walk := EstimateLeg(19.0760, 72.8777, 19.2183, 72.9781, models.ModeWalk)
		metro := EstimateLeg(19.0760, 72.8777, 19.2183, 72.9781, models.ModeMetro)
		assert.Equal(t, walk.DistanceKm, metro.DistanceKm)
		assert.Less(t, metro.TimeMin, walk.TimeMin)
	})

	t.Run("Identical points still take one minute", func(t *testing.T) {
		leg := EstimateLeg(19.0760, 72.8777, 19.0760, 72.8777, models.ModeCar)
		assert.Equal(t, 0.0, leg.DistanceKm)
		assert.Equal(t, 1, leg.TimeMin)
	})

	t.Run("Tiny hop never reports zero minutes", func(t *testing.T) {
		leg := EstimateLeg(19.07600, 72.87770, 19.07605, 72.87775, models.ModeMetro)
		assert.GreaterOrEqual(t, leg.TimeMin, 1)
	})

	t.Run("Unknown mode uses mixed speed", func(t *testing.T) {
		mixed := EstimateLeg(19.0760, 72.8777, 19.0596, 72.8295, models.ModeMixed)
		unknown := EstimateLeg(19.0760, 72.8777, 19.0596, 72.8295, models.TravelMode("HOVERBOARD"))
		assert.Equal(t, mixed, unknown)
	})
}
