package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/mumbaitrails/trails_core/internal/models"
)

// Row is one line of the POI seed CSV. Optional numeric columns are
// pointers so an empty cell stays NULL instead of becoming zero.
type Row struct {
	Name         string   `csv:"name"`
	Description  string   `csv:"description"`
	Address      string   `csv:"address"`
	Locality     string   `csv:"locality"`
	City         string   `csv:"city"`
	Latitude     float64  `csv:"latitude"`
	Longitude    float64  `csv:"longitude"`
	Rating       *float64 `csv:"rating,omitempty"`
	PriceLevel   *int     `csv:"price_level,omitempty"`
	TicketPrice  *int     `csv:"ticket_price_inr,omitempty"`
	TimeSpentMin *int     `csv:"time_spent_min,omitempty"`
	WebsiteURL   string   `csv:"website_url"`
	Phone        string   `csv:"phone"`
	ImageURL     string   `csv:"image_url"`
	Category     string   `csv:"category"`
	Tags         string   `csv:"tags"`
	OpeningHours string   `csv:"opening_hours_json"`
}

// NormalizedRow is a CSV row validated and converted into storable form
type NormalizedRow struct {
	Poi      models.Poi
	Category *models.LabelRef
	Tags     []models.LabelRef
}

var dayKeys = map[string]models.Weekday{
	"mon": models.Monday,
	"tue": models.Tuesday,
	"wed": models.Wednesday,
	"thu": models.Thursday,
	"fri": models.Friday,
	"sat": models.Saturday,
	"sun": models.Sunday,
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	hhmmPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ParseRows reads the seed CSV from r
func ParseRows(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

// NormalizeRow validates a row and converts it into a storable POI.
// takenSlugs tracks slugs already in use; the chosen slug is added to it.
func NormalizeRow(row Row, takenSlugs map[string]bool) (*NormalizedRow, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if row.Latitude < -90 || row.Latitude > 90 {
		return nil, fmt.Errorf("invalid latitude %f", row.Latitude)
	}
	if row.Longitude < -180 || row.Longitude > 180 {
		return nil, fmt.Errorf("invalid longitude %f", row.Longitude)
	}
	if row.Latitude == 0 && row.Longitude == 0 {
		return nil, fmt.Errorf("null island coordinates")
	}

	slug := UniqueSlug(Slugify(name), takenSlugs)

	hours, err := ParseOpeningHours(row.OpeningHours)
	if err != nil {
		return nil, fmt.Errorf("invalid opening hours: %w", err)
	}

	city := strings.TrimSpace(row.City)
	if city == "" {
		city = "Mumbai"
	}

	poi := models.Poi{
		ID:           uuid.NewString(),
		Slug:         slug,
		Name:         name,
		City:         city,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		Description:  optional(row.Description),
		Address:      optional(row.Address),
		Locality:     optional(row.Locality),
		Rating:       row.Rating,
		PriceLevel:   row.PriceLevel,
		TicketPrice:  row.TicketPrice,
		TimeSpentMin: row.TimeSpentMin,
		WebsiteURL:   optional(row.WebsiteURL),
		Phone:        optional(row.Phone),
		ImageURL:     optional(row.ImageURL),
		OpeningHours: hours,
	}

	normalized := &NormalizedRow{Poi: poi}

	if category := strings.TrimSpace(row.Category); category != "" {
		normalized.Category = &models.LabelRef{Slug: Slugify(category), Name: category}
	}

	for _, raw := range strings.Split(row.Tags, "|") {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		normalized.Tags = append(normalized.Tags, models.LabelRef{Slug: Slugify(tag), Name: tag})
	}

	return normalized, nil
}

// ParseOpeningHours decodes the per-day interval JSON, e.g.
// {"mon":[["09:00","18:00"]],"sat":[["10:00","14:00"],["16:00","20:00"]]}
func ParseOpeningHours(raw string) ([]models.OpeningHour, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var byDay map[string][][2]string
	if err := json.Unmarshal([]byte(raw), &byDay); err != nil {
		return nil, err
	}

	var hours []models.OpeningHour
	for _, day := range models.WeekdayOrder {
		key := strings.ToLower(string(day))
		for _, interval := range byDay[key] {
			if !hhmmPattern.MatchString(interval[0]) || !hhmmPattern.MatchString(interval[1]) {
				return nil, fmt.Errorf("malformed interval %v on %s", interval, key)
			}
			hours = append(hours, models.OpeningHour{
				Day:       day,
				OpenTime:  interval[0],
				CloseTime: interval[1],
			})
		}
	}

	for key := range byDay {
		if _, ok := dayKeys[key]; !ok {
			log.Printf("Warning: ignoring unknown day key %q in opening hours", key)
		}
	}

	return hours, nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics
// into single hyphens
func Slugify(name string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// UniqueSlug appends a numeric suffix until the slug is unused, then
// reserves it
func UniqueSlug(base string, taken map[string]bool) string {
	slug := base
	for i := 2; taken[slug]; i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	taken[slug] = true
	return slug
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
