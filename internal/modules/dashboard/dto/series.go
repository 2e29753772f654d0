package dto

import "time"

const (
	dayKey   = "2006-01-02"
	monthKey = "2006-01"
)

// PeriodeDays nombre de jours couverts par l'histogramme ; false si la période est inconnue
func PeriodeDays(periode string) (int, bool) {
	switch periode {
	case "", Periode7Jours:
		return 7, true
	case Periode30Jours:
		return 30, true
	case Periode12Mois:
		return 365, true
	}
	return 0, false
}

// FillDays une entrée par jour calendaire de first à first+days-1, zéro si absent de counts
func FillDays(counts map[string]int64, first time.Time, days int) []JourCount {
	out := make([]JourCount, 0, days)
	for i := 0; i < days; i++ {
		key := first.AddDate(0, 0, i).Format(dayKey)
		out = append(out, JourCount{Date: key, Total: counts[key]})
	}
	return out
}

// FillMonths les n derniers mois jusqu'au mois de now inclus, au format AAAA-MM
func FillMonths(counts map[string]int64, now time.Time, n int) []MoisCount {
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]MoisCount, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := current.AddDate(0, -i, 0).Format(monthKey)
		out = append(out, MoisCount{Mois: key, Total: counts[key]})
	}
	return out
}

// DayKey clé jour utilisée par FillDays
func DayKey(t time.Time) string { return t.Format(dayKey) }

// MonthKey clé mois utilisée par FillMonths
func MonthKey(t time.Time) string { return t.Format(monthKey) }
