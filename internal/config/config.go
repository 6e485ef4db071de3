// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration. Every field has a usable default
// so a bare environment still works against the public APIs.
type Config struct {
	// Upstream endpoints.
	ForecastURL  string
	NWSURL       string
	GDACSURL     string
	NominatimURL string

	// GeocoderUserAgent identifies this client to the geocoding upstream.
	GeocoderUserAgent string

	// GeocoderRPS throttles geocoding calls per the upstream usage policy.
	GeocoderRPS float64

	// DBPath is the SQLite file for persisted state.
	DBPath string

	// PositionTimeout bounds device position reads.
	PositionTimeout time.Duration

	// Telemetry.
	OTLPEndpoint     string
	TelemetryEnabled bool
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset.
func FromEnv() Config {
	return Config{
		ForecastURL:       envString("SKYCAST_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		NWSURL:            envString("SKYCAST_NWS_URL", "https://api.weather.gov"),
		GDACSURL:          envString("SKYCAST_GDACS_URL", "https://www.gdacs.org/gdacsapi/api"),
		NominatimURL:      envString("SKYCAST_NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: envString("SKYCAST_GEOCODER_USER_AGENT", "Skycast/1.0"),
		GeocoderRPS:       envFloat("SKYCAST_GEOCODER_RPS", 1),
		DBPath:            envString("SKYCAST_DB_PATH", "skycast.db"),
		PositionTimeout:   envDuration("SKYCAST_POSITION_TIMEOUT", 15*time.Second),
		OTLPEndpoint:      envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:  os.Getenv("OTEL_ENABLED") == "true",
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
