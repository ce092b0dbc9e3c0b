// Package category maps capture dates onto destination folder names.
package category

import (
	"fmt"
	"strings"
	"time"

	"shoebox/internal/photo"
)

// Granularity selects how coarsely photos are grouped.
type Granularity string

const (
	Yearly   Granularity = "yearly"
	Monthly  Granularity = "monthly"
	Daily    Granularity = "daily"
	Seasonal Granularity = "seasonal"
)

// Granularities lists every supported granularity.
var Granularities = []Granularity{Yearly, Monthly, Daily, Seasonal}

func (g Granularity) String() string { return string(g) }

// ParseGranularity accepts the singular and adjectival spellings of each
// granularity, case-insensitively.
func ParseGranularity(value string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "year", "yearly":
		return Yearly, nil
	case "month", "monthly":
		return Monthly, nil
	case "day", "daily":
		return Daily, nil
	case "season", "seasonal":
		return Seasonal, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want yearly, monthly, daily, or seasonal)", value)
	}
}

// Season is a meteorological (northern hemisphere) season.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
)

// SeasonOf maps a month onto its season. December belongs to the winter of
// the calendar year it falls in.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Fall
	default:
		return Winter
	}
}

// For returns the category for date. yearAsParent nests every granularity
// except yearly under a "{year}/" folder. Unknown granularities are treated
// as yearly.
func For(date time.Time, g Granularity, yearAsParent bool) photo.Category {
	year := date.Year()
	var leaf string
	switch g {
	case Monthly:
		leaf = fmt.Sprintf("%04d-%02d_Photos", year, int(date.Month()))
	case Daily:
		leaf = fmt.Sprintf("%04d-%02d-%02d_Photos", year, int(date.Month()), date.Day())
	case Seasonal:
		leaf = fmt.Sprintf("%04d_%s_Photos", year, SeasonOf(date.Month()))
	default:
		return photo.Category(fmt.Sprintf("%04d_Photos", year))
	}
	if yearAsParent {
		return photo.Category(fmt.Sprintf("%04d/%s", year, leaf))
	}
	return photo.Category(leaf)
}
