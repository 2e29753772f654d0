package utils

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
	SlotLayout     = "15:04"
)

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateTimeLayout,
}

var zoneName = "UTC"

// SetZone fixe le fuseau de l'application. time.Local est remplacé pour que
// les calculs Go et les regroupements SQL (ZoneName) portent sur les mêmes
// jours calendaires.
func SetZone(name string) error {
	if name == "" || name == "Local" {
		return fmt.Errorf("fuseau horaire explicite requis, reçu %q", name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("fuseau horaire inconnu %q: %w", name, err)
	}
	time.Local = loc
	zoneName = loc.String()
	return nil
}

// ZoneName nom IANA du fuseau fixé par SetZone, utilisable par AT TIME ZONE
func ZoneName() string {
	return zoneName
}

// ParseDateTime accepte RFC3339 ou une date-heure locale sans fuseau
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date-heure invalide: %q", value)
}

// ParseDate date locale AAAA-MM-JJ à minuit
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.Local)
}

// StartOfDay minuit local du jour de t
func StartOfDay(t time.Time) time.Time {
	local := t.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// StartOfWeek lundi 00:00 de la semaine de t
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// AgeAt âge en années révolues
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// Date date sans heure, sérialisée en AAAA-MM-JJ
type Date struct {
	time.Time
}

// DateOf nil si t est nil
func DateOf(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("date invalide: %s", raw)
	}
	t, err := ParseDate(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
