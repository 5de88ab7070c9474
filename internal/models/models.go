package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Callers wrap it with the entity name and id, e.g.
// fmt.Errorf("poi %s: %w", id, models.ErrNotFound).
var ErrNotFound = errors.New("not found")

// TravelMode represents how a visitor moves between itinerary stops
type TravelMode string

const (
	ModeWalk  TravelMode = "WALK"
	ModeMetro TravelMode = "METRO"
	ModeBus   TravelMode = "BUS"
	ModeCar   TravelMode = "CAR"
	ModeAuto  TravelMode = "AUTO"
	ModeMixed TravelMode = "MIXED"
)

// Weekday is a 3-letter uppercase day abbreviation (MON..SUN)
type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

// WeekdayOrder lists weekdays in display order (used to sort opening hours)
var WeekdayOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// IsValidWeekday reports whether s is one of MON..SUN
func IsValidWeekday(s string) bool {
	for _, d := range WeekdayOrder {
		if string(d) == s {
			return true
		}
	}
	return false
}

// OpeningHour is one open interval on a weekday, times as zero-padded "HH:MM".
// A POI may carry any number of intervals; overlaps are harmless because
// open-at checks are existential.
type OpeningHour struct {
	Day       Weekday `json:"day"`
	OpenTime  string  `json:"open_time"`
	CloseTime string  `json:"close_time"`
}

// OpenContext is a weekday + time pair derived from a timestamp in the
// city's civil timezone. Never persisted.
type OpenContext struct {
	Weekday Weekday
	Time    string
}

// LabelRef is a category or tag reference on a POI
type LabelRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Poi is a point of interest in the catalog
type Poi struct {
	ID           string        `json:"id"`
	Slug         string        `json:"slug"`
	Name         string        `json:"name"`
	Description  *string       `json:"description"`
	Address      *string       `json:"address"`
	Locality     *string       `json:"locality"`
	City         string        `json:"city"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	Rating       *float64      `json:"rating"`
	PriceLevel   *int          `json:"price_level"`
	TicketPrice  *int          `json:"ticket_price_inr"`
	TimeSpentMin *int          `json:"time_spent_min"`
	WebsiteURL   *string       `json:"website_url"`
	Phone        *string       `json:"phone"`
	ImageURL     *string       `json:"image_url"`
	Categories   []LabelRef    `json:"categories"`
	Tags         []LabelRef    `json:"tags"`
	OpeningHours []OpeningHour `json:"opening_hours"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PoiPoint is the coordinate projection of a POI used for leg computation
type PoiPoint struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// User is an account that can own itineraries. The canonical guest account
// is a regular user row keyed by a fixed email.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ItineraryStopInput is one caller-supplied stop. Order is the visiting
// order and is preserved as-is.
type ItineraryStopInput struct {
	PoiID     string `json:"poi_id"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Note      string `json:"note,omitempty"`
}

// ItineraryLeg is a persisted stop with its travel leg from the previous
// stop. The first stop of an itinerary always has zero distance and time.
type ItineraryLeg struct {
	OrderIndex    int        `json:"order_index"`
	PoiID         string     `json:"poi_id"`
	PoiName       string     `json:"name,omitempty"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	LegDistanceKm float64    `json:"leg_distance_km"`
	LegTimeMin    int        `json:"leg_time_min"`
	Note          *string    `json:"note"`
}

// Itinerary is a persisted trip plan. Created once, immutable thereafter.
type Itinerary struct {
	ID              string         `json:"id"`
	UserID          string         `json:"-"`
	Title           string         `json:"title"`
	Date            *time.Time     `json:"date"`
	ShareToken      string         `json:"share_token"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	TotalTimeMin    int            `json:"total_time_min"`
	Items           []ItineraryLeg `json:"items"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// BoundingBox is a normalized geographic rectangle (min <= max on both axes)
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Center returns the centroid of the box
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// NewBoundingBox builds a box from two corners in any order
func NewBoundingBox(lat1, lon1, lat2, lon2 float64) BoundingBox {
	return BoundingBox{
		MinLat: minf(lat1, lat2),
		MinLon: minf(lon1, lon2),
		MaxLat: maxf(lat1, lat2),
		MaxLon: maxf(lon1, lon2),
	}
}

// SearchQuery is the repository-level predicate set for POI search.
// All fields are optional and AND-combined.
type SearchQuery struct {
	Text      string
	Category  string
	Tag       string
	MinRating *float64
	MaxPrice  *int
	BBox      *BoundingBox
	OpenAt    *OpenContext
	Weekday   Weekday
	Limit     int
}

// SearchResult is one annotated row of a POI search response.
// DistanceKm is present only when a bbox was supplied; OpenNow only when
// an open-at context was supplied.
type SearchResult struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Rating     *float64 `json:"rating"`
	PriceLevel *int     `json:"price_level"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	OpenNow    *bool    `json:"open_now,omitempty"`
	ImageURL   *string  `json:"image_url"`
}

// CategoryStat is one row of the analytics overview
type CategoryStat struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	AvgRating *float64 `json:"avgRating"`
	Count     int      `json:"count"`
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
