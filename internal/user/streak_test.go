package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextLoginStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	t.Run("first check-in starts at one", func(t *testing.T) {
		assert.Equal(t, 1, NextLoginStreak(0, nil, now))
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		earlier := now.Add(-3 * time.Hour)
		assert.Equal(t, 4, NextLoginStreak(4, &earlier, now))
	})

	t.Run("next day within 24h extends", func(t *testing.T) {
		lastNight := now.Add(-11 * time.Hour) // previous calendar day
		assert.Equal(t, 5, NextLoginStreak(4, &lastNight, now))
	})

	t.Run("gap over 24h resets", func(t *testing.T) {
		twoDaysAgo := now.AddDate(0, 0, -2)
		assert.Equal(t, 1, NextLoginStreak(7, &twoDaysAgo, now))
	})
}
