package travel

import (
	"math"

	"github.com/mumbaitrails/trails_core/internal/geo"
	"github.com/mumbaitrails/trails_core/internal/models"
)

// speedKmh maps each travel mode to its average speed in Mumbai traffic.
// MIXED is the canonical 15 km/h blended estimate.
var speedKmh = map[models.TravelMode]float64{
	models.ModeWalk:  4,
	models.ModeMetro: 34,
	models.ModeBus:   18,
	models.ModeCar:   26,
	models.ModeAuto:  20,
	models.ModeMixed: 15,
}

// SpeedKmh returns the average speed for a mode. Unknown or empty modes
// fall back to the MIXED speed, so a leg always has a positive speed.
func SpeedKmh(mode models.TravelMode) float64 {
	if speed, ok := speedKmh[mode]; ok {
		return speed
	}
	return speedKmh[models.ModeMixed]
}

// Leg is the estimated travel segment between two consecutive stops
type Leg struct {
	DistanceKm float64
	TimeMin    int
}

// EstimateLeg computes the great-circle distance between two coordinates
// and derives travel time from the mode's average speed. Distance is
// rounded to 2 decimals; time is rounded to whole minutes with a floor of
// 1 so that near-zero hops never report zero travel time.
func EstimateLeg(lat1, lon1, lat2, lon2 float64, mode models.TravelMode) Leg {
	distance := geo.DistanceKm(lat1, lon1, lat2, lon2)
	minutes := int(math.Round(distance / SpeedKmh(mode) * 60))
	if minutes < 1 {
		minutes = 1
	}
	return Leg{
		DistanceKm: geo.RoundKm(distance),
		TimeMin:    minutes,
	}
}
