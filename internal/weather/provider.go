package weather

import "context"

// Forecast is the normalized output of the primary forecast provider before
// the aggregation service aligns and truncates it. Hourly carries the full
// upstream window; Daily is already limited to the first seven days.
type Forecast struct {
	Current Current
	Hourly  []Hourly
	Daily   []Daily
}

// ForecastProvider fetches the primary forecast. Unlike the alert sources,
// a provider failure fails the whole aggregate fetch.
type ForecastProvider interface {
	// Forecast fetches current, hourly and daily data in the requested
	// unit system.
	Forecast(ctx context.Context, lat, lon float64, units Units) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}
