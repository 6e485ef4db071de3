// Package weather provides the unified weather data model and the aggregation
// service that assembles it from the forecast and hazard-alert providers.
package weather

import (
	"errors"

	"github.com/skycast-app/skycast/internal/alerts"
)

// Weather errors.
var (
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrForecastUnavailable = errors.New("forecast source unavailable")
)

// Units selects the unit system for every numeric field of a WeatherData.
type Units string

const (
	UnitsMetric   Units = "metric"   // Celsius, km/h, mm, hPa
	UnitsImperial Units = "imperial" // Fahrenheit, mph, inch, inHg
)

// Condition is a normalized weather condition translated from a
// provider-specific numeric code.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Current is a normalized snapshot of present conditions.
// Timestamps are Unix seconds.
type Current struct {
	Temp       float64     `json:"temp"`
	FeelsLike  float64     `json:"feels_like"`
	TempMin    float64     `json:"temp_min"`
	TempMax    float64     `json:"temp_max"`
	Pressure   float64     `json:"pressure"`
	Humidity   float64     `json:"humidity"`
	Visibility float64     `json:"visibility"`
	WindSpeed  float64     `json:"wind_speed"`
	WindDeg    float64     `json:"wind_deg"`
	WindGust   float64     `json:"wind_gust"`
	Clouds     float64     `json:"clouds"`
	Dt         int64       `json:"dt"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
	Weather    []Condition `json:"weather"`
	UVIndex    float64     `json:"uvi"`
	DewPoint   float64     `json:"dew_point"`
}

// Hourly is one point of the hourly forecast series.
type Hourly struct {
	Dt         int64       `json:"dt"`
	Temp       float64     `json:"temp"`
	FeelsLike  float64     `json:"feels_like"`
	Pressure   float64     `json:"pressure"`
	Humidity   float64     `json:"humidity"`
	DewPoint   float64     `json:"dew_point"`
	UVIndex    float64     `json:"uvi"`
	Clouds     float64     `json:"clouds"`
	Visibility float64     `json:"visibility"`
	WindSpeed  float64     `json:"wind_speed"`
	WindDeg    float64     `json:"wind_deg"`
	WindGust   float64     `json:"wind_gust"`
	Pop        float64     `json:"pop"`
	Weather    []Condition `json:"weather"`
	Rain       float64     `json:"rain,omitempty"`
}

// DailyTemp is the per-day temperature breakdown. The upstream source has no
// independent day/eve/morn samples, so those carry the (max+min)/2 midpoint
// and night carries min.
type DailyTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DailyFeelsLike mirrors DailyTemp without min/max.
type DailyFeelsLike struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// Daily is one day of the daily forecast series. Index 0 is today.
type Daily struct {
	Dt        int64          `json:"dt"`
	Sunrise   int64          `json:"sunrise"`
	Sunset    int64          `json:"sunset"`
	Temp      DailyTemp      `json:"temp"`
	FeelsLike DailyFeelsLike `json:"feels_like"`
	Pressure  float64        `json:"pressure"`
	Humidity  float64        `json:"humidity"`
	DewPoint  float64        `json:"dew_point"`
	WindSpeed float64        `json:"wind_speed"`
	WindDeg   float64        `json:"wind_deg"`
	WindGust  float64        `json:"wind_gust"`
	Weather   []Condition    `json:"weather"`
	Clouds    float64        `json:"clouds"`
	Pop       float64        `json:"pop"`
	Rain      float64        `json:"rain"`
	UVIndex   float64        `json:"uvi"`
	Summary   string         `json:"summary,omitempty"`
}

// WeatherData is the aggregate of one fetch. Instances are immutable once
// assembled; a new fetch produces a wholly new value. Every numeric quantity
// is expressed in the unit system requested at fetch time.
type WeatherData struct {
	Current Current        `json:"current"`
	Hourly  []Hourly       `json:"hourly"`
	Daily   []Daily        `json:"daily"`
	Alerts  []alerts.Alert `json:"alerts"`
}
