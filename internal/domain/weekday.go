package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// WeekdayKey identifies a day of the week in plans ("mon".."sun").
type WeekdayKey string

const (
	Monday    WeekdayKey = "mon"
	Tuesday   WeekdayKey = "tue"
	Wednesday WeekdayKey = "wed"
	Thursday  WeekdayKey = "thu"
	Friday    WeekdayKey = "fri"
	Saturday  WeekdayKey = "sat"
	Sunday    WeekdayKey = "sun"
)

// Weekday pairs a key with its display label.
type Weekday struct {
	Key   WeekdayKey `json:"key"`
	Label string     `json:"label"`
}

// Weekdays lists the week in display order with the app's (Italian) labels.
var Weekdays = []Weekday{
	{Key: Monday, Label: "Lunedì"},
	{Key: Tuesday, Label: "Martedì"},
	{Key: Wednesday, Label: "Mercoledì"},
	{Key: Thursday, Label: "Giovedì"},
	{Key: Friday, Label: "Venerdì"},
	{Key: Saturday, Label: "Sabato"},
	{Key: Sunday, Label: "Domenica"},
}

// titleStems maps leading characters of localized day names to their key.
// Italian stems stop before the accented letter so "Lunedi" and "Lunedì" both match.
var titleStems = []struct {
	stem string
	key  WeekdayKey
}{
	{"luned", Monday},
	{"marted", Tuesday},
	{"mercoled", Wednesday},
	{"gioved", Thursday},
	{"venerd", Friday},
	{"sabat", Saturday},
	{"domenic", Sunday},
	{"monday", Monday},
	{"tuesday", Tuesday},
	{"wednesday", Wednesday},
	{"thursday", Thursday},
	{"friday", Friday},
	{"saturday", Saturday},
	{"sunday", Sunday},
}

// Valid reports whether k is one of mon..sun.
func (k WeekdayKey) Valid() bool {
	switch k {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// Label returns the display label, or the raw key when unknown.
func (k WeekdayKey) Label() string {
	for _, w := range Weekdays {
		if w.Key == k {
			return w.Label
		}
	}
	return string(k)
}

// InferWeekday guesses the weekday of a day persisted without one.
// The id prefix before the first underscore wins ("mon_1699999999" -> mon),
// then the title's leading characters; otherwise it returns "".
func InferWeekday(id, title string) WeekdayKey {
	prefix, _, _ := strings.Cut(id, "_")
	if k := WeekdayKey(prefix); k.Valid() {
		return k
	}

	// Casers are stateful, so one per call.
	folded := cases.Fold().String(title)
	for _, s := range titleStems {
		if strings.HasPrefix(folded, s.stem) {
			return s.key
		}
	}
	return ""
}
