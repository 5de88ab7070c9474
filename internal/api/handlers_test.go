package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBBox(t *testing.T) {
	t.Run("Valid bbox", func(t *testing.T) {
		values, err := parseBBox("18.9, 72.8, 19.2, 73.0")
		require.NoError(t, err)
		assert.Equal(t, []float64{18.9, 72.8, 19.2, 73.0}, values)
	})

	t.Run("Wrong arity rejected", func(t *testing.T) {
		_, err := parseBBox("18.9,72.8,19.2")
		assert.Error(t, err)
	})

	t.Run("Non-numeric rejected", func(t *testing.T) {
		_, err := parseBBox("18.9,72.8,north,73.0")
		assert.Error(t, err)
	})

	t.Run("Empty rejected", func(t *testing.T) {
		_, err := parseBBox("")
		assert.Error(t, err)
	})
}
