// Package namedate recognizes capture dates embedded in photo file names.
//
// Recognition is table driven: Patterns is evaluated in order and the first
// pattern whose first match parses into a valid calendar date wins. Only the
// first match of each pattern is considered, so a name holding an invalid
// eight-digit run ahead of a real date falls through to later patterns rather
// than to later matches of the same pattern.
package namedate

import (
	"regexp"
	"strings"
	"time"
)

// Pattern is one row of the recognition table.
type Pattern struct {
	Name   string
	Expr   *regexp.Regexp
	Prefix string
	Layout string
}

const compactLayout = "20060102"

// Patterns lists the recognized forms in priority order.
var Patterns = []Pattern{
	{Name: "compact", Expr: regexp.MustCompile(`\d{8}`), Layout: compactLayout},
	{Name: "hyphenated", Expr: regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), Layout: "2006-01-02"},
	{Name: "underscored", Expr: regexp.MustCompile(`\d{4}_\d{2}_\d{2}`), Layout: "2006_01_02"},
	{Name: "img-dash", Expr: regexp.MustCompile(`IMG-\d{8}`), Prefix: "IMG-", Layout: compactLayout},
	{Name: "img-underscore", Expr: regexp.MustCompile(`IMG_\d{8}`), Prefix: "IMG_", Layout: compactLayout},
	{Name: "img-edited", Expr: regexp.MustCompile(`IMG_E\d{8}`), Prefix: "IMG_E", Layout: compactLayout},
	{Name: "whatsapp", Expr: regexp.MustCompile(`WA\d{8}`), Prefix: "WA", Layout: compactLayout},
}

// Match describes a successful recognition.
type Match struct {
	Date    time.Time
	Pattern string
	Text    string
}

// Parse recognizes a date in name, which must be a base name without
// directory or extension. Dates are interpreted in the local time zone.
func Parse(name string) (Match, bool) {
	return ParseInLocation(name, time.Local)
}

// ParseInLocation is Parse with an explicit location.
func ParseInLocation(name string, loc *time.Location) (Match, bool) {
	return parseWith(Patterns, name, loc)
}

func parseWith(patterns []Pattern, name string, loc *time.Location) (Match, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, p := range patterns {
		text := p.Expr.FindString(name)
		if text == "" {
			continue
		}
		value := strings.TrimPrefix(text, p.Prefix)
		t, err := time.ParseInLocation(p.Layout, value, loc)
		if err != nil || t.Year() < 1 {
			continue
		}
		return Match{Date: t, Pattern: p.Name, Text: text}, true
	}
	return Match{}, false
}
