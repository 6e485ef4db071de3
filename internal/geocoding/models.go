// Package geocoding defines the forward and reverse geocoding contracts used
// by the location store and the search flow.
package geocoding

import "context"

// Candidate is one forward-search result.
type Candidate struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Place is a reverse-lookup result.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// UnknownPlace is the safe fallback when reverse lookup fails. Reverse
// geocoding sits on the critical path of acquiring a usable location, so it
// degrades instead of failing.
var UnknownPlace = Place{City: "Unknown Location", Country: ""}

// Geocoder resolves free-text queries and coordinates to places.
type Geocoder interface {
	// SearchCities resolves a free-text query to candidate locations.
	// Transport and HTTP errors propagate; a malformed body is zero results.
	SearchCities(ctx context.Context, query string) ([]Candidate, error)

	// Reverse resolves a coordinate to a city and country. It never fails;
	// on any error it returns UnknownPlace.
	Reverse(ctx context.Context, lat, lon float64) Place
}
