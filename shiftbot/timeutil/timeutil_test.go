package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *Resolver {
	return NewResolver(map[string]int{
		"UTC":           0,
		"Asia/Shanghai": 480,
	})
}

func TestLocalDate(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name    string
		instant time.Time
		tz      string
		want    string
	}{
		{
			name:    "utc midday",
			instant: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			tz:      "UTC",
			want:    "2024-03-15",
		},
		{
			name:    "shanghai rolls past midnight",
			instant: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC),
			tz:      "Asia/Shanghai",
			want:    "2024-03-16",
		},
		{
			name:    "shanghai same day before offset boundary",
			instant: time.Date(2024, 3, 15, 15, 59, 0, 0, time.UTC),
			tz:      "Asia/Shanghai",
			want:    "2024-03-15",
		},
		{
			name:    "unknown timezone falls back to utc",
			instant: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC),
			tz:      "Mars/Olympus",
			want:    "2024-03-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.LocalDate(tt.instant, tt.tz))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	r := newTestResolver()

	days, err := r.DaysBetween("2024-03-01", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 14, days)

	days, err = r.DaysBetween("2024-03-15", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 0, days)

	days, err = r.DaysBetween("2024-03-15", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, -14, days)

	// month and year boundaries
	days, err = r.DaysBetween("2023-12-30", "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	_, err = r.DaysBetween("not-a-date", "2024-01-02")
	assert.Error(t, err)
}

func TestDaysBetweenMonotonic(t *testing.T) {
	r := newTestResolver()

	start := "2024-03-01"
	prev := -1
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		d, err := r.DaysBetween(start, day.Format(DateLayout))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
		day = day.Add(24 * time.Hour)
	}
}
