package utils

import (
	"testing"
	"time"
	"word-progress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClock(t *testing.T) {
	t.Run("defaults to UTC", func(t *testing.T) {
		c, err := NewSystemClock("")
		require.NoError(t, err)
		assert.Equal(t, time.UTC, c.Location())
		assert.Equal(t, models.DateOf(time.Now().UTC()), c.Today())
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := NewSystemClock("Mars/Olympus")
		assert.Error(t, err)
	})
}

func TestFixedClock(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	c := FixedClock{At: time.Date(2024, time.January, 31, 23, 30, 0, 0, time.UTC).In(loc)}
	assert.Equal(t, models.Date{Year: 2024, Month: time.February, Day: 1}, c.Today())
	assert.Equal(t, loc, c.Location())
}
