package importer

import (
	"strings"
	"testing"

	"github.com/mumbaitrails/trails_core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	csv := strings.Join([]string{
		"name,description,address,locality,city,latitude,longitude,rating,price_level,ticket_price_inr,time_spent_min,website_url,phone,image_url,category,tags,opening_hours_json",
		`Gateway of India,Iconic arch monument,Apollo Bandar,Colaba,Mumbai,18.9220,72.8347,4.6,1,0,60,,,,Monument,heritage|waterfront,"{""mon"":[[""07:00"",""19:00""]]}"`,
		`Haji Ali Dargah,,,Worli,Mumbai,18.9827,72.8089,4.4,,,,,,,Religious,heritage,`,
	}, "\n")

	rows, err := ParseRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Gateway of India", rows[0].Name)
	assert.Equal(t, 18.9220, rows[0].Latitude)
	require.NotNil(t, rows[0].Rating)
	assert.Equal(t, 4.6, *rows[0].Rating)
	assert.Nil(t, rows[1].PriceLevel)
}

func TestNormalizeRow(t *testing.T) {
	base := Row{
		Name:      "Gateway of India",
		City:      "Mumbai",
		Latitude:  18.9220,
		Longitude: 72.8347,
		Category:  "Monument",
		Tags:      "heritage | waterfront||",
	}

	t.Run("Valid row", func(t *testing.T) {
		row := base
		row.OpeningHours = `{"mon":[["07:00","19:00"]],"sun":[["08:00","12:00"]]}`

		got, err := NormalizeRow(row, map[string]bool{})
		require.NoError(t, err)

		assert.Equal(t, "gateway-of-india", got.Poi.Slug)
		assert.NotEmpty(t, got.Poi.ID)
		require.NotNil(t, got.Category)
		assert.Equal(t, "monument", got.Category.Slug)
		assert.Equal(t, "Monument", got.Category.Name)

		require.Len(t, got.Tags, 2)
		assert.Equal(t, "heritage", got.Tags[0].Slug)
		assert.Equal(t, "waterfront", got.Tags[1].Slug)

		require.Len(t, got.Poi.OpeningHours, 2)
		assert.Equal(t, models.Monday, got.Poi.OpeningHours[0].Day)
		assert.Equal(t, "07:00", got.Poi.OpeningHours[0].OpenTime)
		assert.Equal(t, models.Sunday, got.Poi.OpeningHours[1].Day)
	})

	t.Run("Slug collisions get numeric suffixes", func(t *testing.T) {
		taken := map[string]bool{}

		first, err := NormalizeRow(base, taken)
		require.NoError(t, err)
		second, err := NormalizeRow(base, taken)
		require.NoError(t, err)
		third, err := NormalizeRow(base, taken)
		require.NoError(t, err)

		assert.Equal(t, "gateway-of-india", first.Poi.Slug)
		assert.Equal(t, "gateway-of-india-2", second.Poi.Slug)
		assert.Equal(t, "gateway-of-india-3", third.Poi.Slug)
	})

	t.Run("Missing name rejected", func(t *testing.T) {
		row := base
		row.Name = "   "
		_, err := NormalizeRow(row, map[string]bool{})
		assert.Error(t, err)
	})

	t.Run("Out-of-range coordinates rejected", func(t *testing.T) {
		row := base
		row.Latitude = 91.0
		_, err := NormalizeRow(row, map[string]bool{})
		assert.Error(t, err)
	})

	t.Run("Null island rejected", func(t *testing.T) {
		row := base
		row.Latitude = 0
		row.Longitude = 0
		_, err := NormalizeRow(row, map[string]bool{})
		assert.Error(t, err)
	})

	t.Run("Empty city defaults to Mumbai", func(t *testing.T) {
		row := base
		row.City = ""
		got, err := NormalizeRow(row, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, "Mumbai", got.Poi.City)
	})

	t.Run("Malformed hours JSON rejected", func(t *testing.T) {
		row := base
		row.OpeningHours = `{"mon": "all day"}`
		_, err := NormalizeRow(row, map[string]bool{})
		assert.Error(t, err)
	})
}

func TestParseOpeningHours(t *testing.T) {
	t.Run("Empty means no hours", func(t *testing.T) {
		hours, err := ParseOpeningHours("")
		require.NoError(t, err)
		assert.Nil(t, hours)
	})

	t.Run("Multiple intervals on one day", func(t *testing.T) {
		hours, err := ParseOpeningHours(`{"sat":[["10:00","14:00"],["16:00","20:00"]]}`)
		require.NoError(t, err)
		require.Len(t, hours, 2)
		assert.Equal(t, models.Saturday, hours[0].Day)
		assert.Equal(t, "16:00", hours[1].OpenTime)
	})

	t.Run("Non HH:MM times rejected", func(t *testing.T) {
		_, err := ParseOpeningHours(`{"mon":[["9:00","18:00"]]}`)
		assert.Error(t, err)
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Marine Drive", "marine-drive"},
		{"punctuation collapses", "Chhatrapati Shivaji Maharaj Terminus (CSMT)", "chhatrapati-shivaji-maharaj-terminus-csmt"},
		{"leading and trailing stripped", "  Juhu Beach!  ", "juhu-beach"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
