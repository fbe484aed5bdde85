package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// Location is a country/city/area triple. City and area are stored in
// normalized form so that fan-out matching is case-insensitive.
type Location struct {
	Country string
	City    string
	Area    string
}

// Normalize returns a copy with every field trimmed and lower-cased using
// Unicode case folding.
func (l Location) Normalize() Location {
	return Location{
		Country: NormalizeLocationValue(l.Country),
		City:    NormalizeLocationValue(l.City),
		Area:    NormalizeLocationValue(l.Area),
	}
}

// NormalizeLocationValue trims surrounding whitespace and lower-cases a
// single location component.
func NormalizeLocationValue(v string) string {
	return lowerCaser.String(strings.TrimSpace(v))
}
