package storage

import "strings"

// Airline represents an airline carrier identified by its IATA or ICAO code
type Airline struct {
	Name     string `json:"name"`
	IATA     string `json:"iata,omitempty"`
	ICAO     string `json:"icao,omitempty"`
	Callsign string `json:"callsign"`
	Country  string `json:"country"`
}

// Airport represents an airport. Latitude and longitude are optional;
// airports without coordinates cannot be weather-enriched or used for
// distance computation.
type Airport struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	IATA      string   `json:"iata,omitempty"`
	ICAO      string   `json:"icao,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Route represents a flight route operated by an airline between two
// airports. Aircraft holds the plane-type codes flown on the route as an
// ordered set; the space-joined storage encoding never leaves this package.
type Route struct {
	Airline   string   `json:"airline"`
	Departure string   `json:"departure"`
	Arrival   string   `json:"arrival"`
	Aircraft  []string `json:"aircraft_types"`
}

// RouteEnds is a route row joined with the names of its endpoint airports
type RouteEnds struct {
	Departure     string `json:"departure"`
	DepartureName string `json:"departure_name"`
	Arrival       string `json:"arrival"`
	ArrivalName   string `json:"arrival_name"`
}

// Country maps a country name to its two-letter code
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// PlaneType represents an aircraft type referenced by routes
type PlaneType struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// NormalizeCode uppercases and trims an airline/airport/aircraft code.
// Codes are case-insensitive on the wire but stored uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCodes applies NormalizeCode to every element
func NormalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, NormalizeCode(c))
	}
	return out
}

// JoinAircraft encodes an aircraft code list into the space-joined storage
// format
func JoinAircraft(codes []string) string {
	return strings.Join(codes, " ")
}

// SplitAircraft decodes the space-joined storage format. An empty column
// yields an empty slice, never nil.
func SplitAircraft(planes string) []string {
	if planes == "" {
		return []string{}
	}
	return strings.Split(planes, " ")
}

// UnionAircraft appends the codes from add that are not already present in
// existing, preserving order. The second result reports whether anything
// was added.
func UnionAircraft(existing, add []string) ([]string, bool) {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(add))
	for _, c := range existing {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}
	changed := false
	for _, c := range add {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
			changed = true
		}
	}
	return merged, changed
}
