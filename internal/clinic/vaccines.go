package clinic

import (
	"strings"

	"vetclinic/m/domain"
)

// DueOffset is the interval until a vaccine's next dose, fixed when the
// vaccine is recorded.
type DueOffset string

const (
	DueNone       DueOffset = ""
	DueOneWeek    DueOffset = "1w"
	DueTwoWeeks   DueOffset = "2w"
	DueThreeWeeks DueOffset = "3w"
	DueOneMonth   DueOffset = "1m"
	DueOneYear    DueOffset = "1y"
)

var dueOffsetDays = map[DueOffset]int{
	DueOneWeek:    7,
	DueTwoWeeks:   14,
	DueThreeWeeks: 21,
	DueOneMonth:   30,
	DueOneYear:    365,
}

var dueOffsetLabels = map[string]DueOffset{
	"1 week":  DueOneWeek,
	"2 weeks": DueTwoWeeks,
	"3 weeks": DueThreeWeeks,
	"1 month": DueOneMonth,
	"1 year":  DueOneYear,
}

// ParseDueOffset accepts the short codes and the labels offered in forms
// ("2 weeks", "1 year").
func ParseDueOffset(s string) (DueOffset, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return DueNone, true
	}
	if o, ok := dueOffsetLabels[s]; ok {
		return o, true
	}
	o := DueOffset(s)
	_, ok := dueOffsetDays[o]
	return o, ok
}

// NextDue returns the administration date plus the offset, or nil when no
// further dose is planned.
func NextDue(administered domain.Date, offset DueOffset) *domain.Date {
	days, ok := dueOffsetDays[offset]
	if !ok {
		return nil
	}
	next := administered.AddDays(days)
	return &next
}

var vaccinesBySpecies = map[string][]string{
	"Dog":  {"ثنائي", "خماسي", "ثماني", "Rabies (مصري)", "Rabies (هندي)", "Rabies (امريي)"},
	"Cat":  {"ثلاثي", "رباعي", "Rabies (مصري)", "Rabies (هندي)", "Rabies (امريي)"},
	"Bird": {"Bird Vaccine A", "Bird Vaccine B"},
}

// Species lists the species offered when registering a pet.
func Species() []string {
	return []string{"Dog", "Cat", "Bird", "Other"}
}

// VaccineSuggestions returns the usual vaccines for species, always ending
// with "Other" so that a custom type can be entered.
func VaccineSuggestions(species string) []string {
	var out []string
	for name, list := range vaccinesBySpecies {
		if strings.EqualFold(name, strings.TrimSpace(species)) {
			out = append(out, list...)
			break
		}
	}
	return append(out, "Other")
}
