// Package format provides presentation helpers for normalized weather
// values: compact temperature/speed/pressure strings, compass directions,
// and UV levels.
package format

import (
	"fmt"
	"math"
)

// inHgPerHPa converts hectopascals to inches of mercury.
const inHgPerHPa = 0.02953

// Temp renders a rounded temperature with its unit label.
func Temp(temp float64, unit string) string {
	return fmt.Sprintf("%d%s", int(math.Round(temp)), unit)
}

// Speed renders a rounded wind speed with its unit label.
func Speed(speed float64, unit string) string {
	return fmt.Sprintf("%d %s", int(math.Round(speed)), unit)
}

// Pressure renders a pressure value. The source reports hPa; the inHg label
// triggers conversion.
func Pressure(pressure float64, unit string) string {
	if unit == "inHg" {
		return fmt.Sprintf("%.2f %s", pressure*inHgPerHPa, unit)
	}
	return fmt.Sprintf("%d %s", int(math.Round(pressure)), unit)
}

// compassPoints are the eight principal wind directions.
var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection maps degrees to the nearest principal compass point.
func WindDirection(degrees float64) string {
	index := int(math.Round(degrees/45)) % 8
	if index < 0 {
		index += 8
	}
	return compassPoints[index]
}

// UVLevel names the standard UV index bands.
func UVLevel(uvi float64) string {
	switch {
	case uvi <= 2:
		return "Low"
	case uvi <= 5:
		return "Moderate"
	case uvi <= 7:
		return "High"
	case uvi <= 10:
		return "Very High"
	default:
		return "Extreme"
	}
}

// IsNight reports whether the instant falls outside the sunrise..sunset
// window. All arguments are Unix seconds.
func IsNight(now, sunrise, sunset int64) bool {
	return now < sunrise || now > sunset
}
