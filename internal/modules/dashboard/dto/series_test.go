package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodeDays(t *testing.T) {
	for periode, want := range map[string]int{"": 7, "7days": 7, "30days": 30, "12months": 365} {
		got, ok := PeriodeDays(periode)
		assert.True(t, ok, periode)
		assert.Equal(t, want, got, periode)
	}

	_, ok := PeriodeDays("2weeks")
	assert.False(t, ok)
}

func TestFillDays_ZeroFillsCalendar(t *testing.T) {
	first := time.Date(2025, 2, 26, 0, 0, 0, 0, time.UTC)
	counts := map[string]int64{"2025-02-27": 3, "2025-03-01": 1}

	days := FillDays(counts, first, 7)

	require.Len(t, days, 7)
	assert.Equal(t, JourCount{Date: "2025-02-26", Total: 0}, days[0])
	assert.Equal(t, JourCount{Date: "2025-02-27", Total: 3}, days[1])
	assert.Equal(t, JourCount{Date: "2025-02-28", Total: 0}, days[2])
	assert.Equal(t, JourCount{Date: "2025-03-01", Total: 1}, days[3])
	assert.Equal(t, "2025-03-04", days[6].Date)
}

func TestFillMonths_LastTwelveMonths(t *testing.T) {
	now := time.Date(2025, 3, 31, 15, 0, 0, 0, time.UTC)
	counts := map[string]int64{"2024-04": 2, "2025-03": 5, "2024-03": 9}

	months := FillMonths(counts, now, 12)

	require.Len(t, months, 12)
	assert.Equal(t, MoisCount{Mois: "2024-04", Total: 2}, months[0])
	assert.Equal(t, MoisCount{Mois: "2025-02", Total: 0}, months[10])
	assert.Equal(t, MoisCount{Mois: "2025-03", Total: 5}, months[11])
}
