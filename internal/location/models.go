// Package location owns persisted user state: the device location, the
// selected location, favorites, and unit settings. All three persisted
// slices are reconciled with the key-value store on load and on every
// mutation.
package location

import (
	"errors"

	"github.com/skycast-app/skycast/internal/weather"
)

// Location errors.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrLocationTimeout  = errors.New("location acquisition timed out")
)

// favoriteTolerance is the fuzzy-match tolerance (degrees, ~1.1 km) for
// favorite membership tests. GPS fixes for the same place drift slightly,
// so exact equality would miss re-reads of a favorited spot.
const favoriteTolerance = 0.01

// Location is a named coordinate. IsCurrent distinguishes a GPS-derived
// location from a manually selected one.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	IsCurrent bool    `json:"isCurrent"`
}

// Settings holds the unit system and presentation preferences. The three
// unit-label fields must stay consistent with Units; settings mutations are
// atomic so a units change rewrites all labels in one update.
type Settings struct {
	Units           weather.Units `json:"units"`
	TemperatureUnit string        `json:"temperatureUnit"`
	SpeedUnit       string        `json:"speedUnit"`
	PressureUnit    string        `json:"pressureUnit"`
	Theme           string        `json:"theme"`
}

// DefaultSettings are applied when nothing is persisted yet.
func DefaultSettings() Settings {
	return Settings{
		Units:           weather.UnitsMetric,
		TemperatureUnit: "°C",
		SpeedUnit:       "km/h",
		PressureUnit:    "hPa",
		Theme:           "auto",
	}
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
// Callers switching Units are responsible for patching the dependent labels
// in the same update (see PatchForUnits).
type SettingsPatch struct {
	Units           *weather.Units
	TemperatureUnit *string
	SpeedUnit       *string
	PressureUnit    *string
	Theme           *string
}

// PatchForUnits returns a patch that switches the unit system together with
// all three dependent labels, keeping the settings invariant intact.
func PatchForUnits(units weather.Units) SettingsPatch {
	temp, speed, pressure := "°C", "km/h", "hPa"
	if units == weather.UnitsImperial {
		temp, speed, pressure = "°F", "mph", "inHg"
	}
	return SettingsPatch{
		Units:           &units,
		TemperatureUnit: &temp,
		SpeedUnit:       &speed,
		PressureUnit:    &pressure,
	}
}
