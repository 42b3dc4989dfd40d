// Package lookup resolves airline and aircraft type codes to human-readable
// display names.
//
// The tables are compiled in (see tables.go) so name resolution works with
// no network dependency. Lookup is a case-insensitive exact key match; a
// miss returns the empty string and callers fall back to the raw code.
package lookup

import "strings"

// Tables holds the airline and aircraft display-name tables.
// Construct with Default, or with New for tests and alternate data sets.
type Tables struct {
	airlines map[string]string
	aircraft map[string]string
}

// New builds Tables from explicit code→name maps. Keys are matched
// case-insensitively.
func New(airlines, aircraft map[string]string) *Tables {
	t := &Tables{
		airlines: make(map[string]string, len(airlines)),
		aircraft: make(map[string]string, len(aircraft)),
	}
	for k, v := range airlines {
		t.airlines[strings.ToUpper(k)] = v
	}
	for k, v := range aircraft {
		t.aircraft[strings.ToUpper(k)] = v
	}
	return t
}

// Default returns the embedded tables.
func Default() *Tables {
	return New(airlineNames, aircraftNames)
}

// AirlineName returns the display name for an airline ICAO code, or ""
// when the code is unknown.
func (t *Tables) AirlineName(code string) string {
	return t.airlines[strings.ToUpper(strings.TrimSpace(code))]
}

// AircraftName returns the display label for an aircraft type code, or ""
// when the code is unknown.
func (t *Tables) AircraftName(code string) string {
	return t.aircraft[strings.ToUpper(strings.TrimSpace(code))]
}

// maxAircraftLabelLen caps aircraft labels so they fit the display.
const maxAircraftLabelLen = 10

// NormalizeAircraftLabel strips freight/passenger qualifier words from an
// aircraft label, collapses leftover whitespace, and caps the length.
// Returns "" only if the input had no other content.
func NormalizeAircraftLabel(label string) string {
	s := strings.TrimSpace(label)
	for _, word := range []string{"Freighter", "freighter", "FREIGHTER", "pax", "PAX"} {
		s = strings.ReplaceAll(s, word, "")
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxAircraftLabelLen {
		s = s[:maxAircraftLabelLen]
		s = strings.TrimSpace(s)
	}
	return s
}

// AirlinePrefix derives an airline code from a callsign's leading alphabetic
// run. Most ICAO operator prefixes are 3 letters, some IATA ones are 2;
// anything shorter is not a usable code and yields "".
func AirlinePrefix(callsign string) string {
	cs := strings.TrimSpace(callsign)
	var prefix strings.Builder
	for _, c := range cs {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			prefix.WriteRune(c)
			continue
		}
		break
	}
	p := strings.ToUpper(prefix.String())
	if len(p) >= 3 {
		return p[:3]
	}
	if len(p) == 2 {
		return p
	}
	return ""
}
