// Package openmeteo provides the primary forecast client for the Open-Meteo
// API. The API returns current conditions plus parallel hourly and daily
// arrays; the client normalizes them into the unified weather model.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skycast-app/skycast/internal/provider/resilience"
	"github.com/skycast-app/skycast/internal/weather"
)

const (
	// ProviderName identifies this forecast provider.
	ProviderName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// defaultVisibility is assumed when the source omits visibility,
	// matching the 10 km the presentation layer expects.
	defaultVisibility = 10000.0

	hourlyFields = "temperature_2m,relative_humidity_2m,apparent_temperature," +
		"precipitation_probability,precipitation,weathercode,cloud_cover,visibility," +
		"wind_speed_10m,wind_direction_10m,wind_gusts_10m,uv_index,is_day"
	dailyFields = "weathercode,temperature_2m_max,temperature_2m_min,sunrise,sunset," +
		"precipitation_sum,precipitation_probability_max,wind_speed_10m_max," +
		"wind_gusts_10m_max,uv_index_max"
	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature," +
		"precipitation,weathercode,cloud_cover,pressure_msl,surface_pressure," +
		"wind_speed_10m,wind_direction_10m,wind_gusts_10m,is_day"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the forecast endpoint (optional, defaults to open-meteo.com).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo forecast client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Forecast fetches and normalizes the forecast for a coordinate. The unit
// system is threaded through the request so every numeric field arrives
// already converted.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units weather.Units) (*weather.Forecast, error) {
	tempUnit, speedUnit, precipUnit := unitParams(units)

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("hourly", hourlyFields)
	q.Set("daily", dailyFields)
	q.Set("temperature_unit", tempUnit)
	q.Set("wind_speed_unit", speedUnit)
	q.Set("precipitation_unit", precipUnit)
	q.Set("timezone", "auto")
	q.Set("timeformat", "unixtime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toForecast(&body), nil
}

// unitParams maps the unit system to the source's request parameters.
func unitParams(units weather.Units) (temp, speed, precip string) {
	if units == weather.UnitsImperial {
		return "fahrenheit", "mph", "inch"
	}
	return "celsius", "kmh", "mm"
}

// toForecast normalizes the upstream shape into the unified model.
func (c *Client) toForecast(resp *forecastResponse) *weather.Forecast {
	current := c.toCurrent(resp)

	out := &weather.Forecast{
		Current: current,
		Hourly:  make([]weather.Hourly, 0, len(resp.Hourly.Time)),
		Daily:   make([]weather.Daily, 0, 7),
	}

	for i := range resp.Hourly.Time {
		out.Hourly = append(out.Hourly, weather.Hourly{
			Dt:         resp.Hourly.Time[i],
			Temp:       floatAt(resp.Hourly.Temperature, i),
			FeelsLike:  floatAt(resp.Hourly.ApparentTemperature, i),
			Pressure:   current.Pressure,
			Humidity:   floatAt(resp.Hourly.RelativeHumidity, i),
			UVIndex:    floatAt(resp.Hourly.UVIndex, i),
			Clouds:     floatAt(resp.Hourly.CloudCover, i),
			Visibility: floatAtDefault(resp.Hourly.Visibility, i, defaultVisibility),
			WindSpeed:  floatAt(resp.Hourly.WindSpeed, i),
			WindDeg:    floatAt(resp.Hourly.WindDirection, i),
			WindGust:   floatAt(resp.Hourly.WindGusts, i),
			Pop:        floatAt(resp.Hourly.PrecipitationProbability, i) / 100,
			Weather:    []weather.Condition{weather.TranslateCode(intAt(resp.Hourly.WeatherCode, i))},
			Rain:       floatAt(resp.Hourly.Precipitation, i),
		})
	}

	days := len(resp.Daily.Time)
	if days > 7 {
		days = 7
	}
	for i := 0; i < days; i++ {
		dayMin := floatAt(resp.Daily.TemperatureMin, i)
		dayMax := floatAt(resp.Daily.TemperatureMax, i)
		// No independent per-day feels-like samples upstream; day/eve/morn
		// carry the midpoint and night carries the minimum.
		avg := (dayMax + dayMin) / 2
		condition := weather.TranslateCode(intAt(resp.Daily.WeatherCode, i))

		out.Daily = append(out.Daily, weather.Daily{
			Dt:      resp.Daily.Time[i],
			Sunrise: intAt64(resp.Daily.Sunrise, i),
			Sunset:  intAt64(resp.Daily.Sunset, i),
			Temp: weather.DailyTemp{
				Day:   avg,
				Min:   dayMin,
				Max:   dayMax,
				Night: dayMin,
				Eve:   avg,
				Morn:  avg,
			},
			FeelsLike: weather.DailyFeelsLike{
				Day:   avg,
				Night: dayMin,
				Eve:   avg,
				Morn:  avg,
			},
			Pressure:  current.Pressure,
			Humidity:  current.Humidity,
			WindSpeed: floatAt(resp.Daily.WindSpeedMax, i),
			WindGust:  floatAt(resp.Daily.WindGustsMax, i),
			Weather:   []weather.Condition{condition},
			Clouds:    current.Clouds,
			Pop:       floatAt(resp.Daily.PrecipitationProbabilityMax, i) / 100,
			Rain:      floatAt(resp.Daily.PrecipitationSum, i),
			UVIndex:   floatAt(resp.Daily.UVIndexMax, i),
			Summary:   condition.Description,
		})
	}

	return out
}

// toCurrent builds the current snapshot, resolving the optional fields the
// source is known to omit.
func (c *Client) toCurrent(resp *forecastResponse) weather.Current {
	pressure := resp.Current.PressureMSL
	if pressure == 0 {
		pressure = resp.Current.SurfacePressure
	}

	uv := 0.0
	if len(resp.Hourly.UVIndex) > 0 {
		uv = resp.Hourly.UVIndex[0]
	}

	current := weather.Current{
		Temp:       resp.Current.Temperature,
		FeelsLike:  resp.Current.ApparentTemperature,
		Pressure:   pressure,
		Humidity:   resp.Current.RelativeHumidity,
		Visibility: defaultVisibility,
		WindSpeed:  resp.Current.WindSpeed,
		WindDeg:    resp.Current.WindDirection,
		WindGust:   resp.Current.WindGusts,
		Clouds:     resp.Current.CloudCover,
		Dt:         resp.Current.Time,
		Weather:    []weather.Condition{weather.TranslateCode(resp.Current.WeatherCode)},
		UVIndex:    uv,
	}

	if len(resp.Daily.Time) > 0 {
		current.TempMin = floatAt(resp.Daily.TemperatureMin, 0)
		current.TempMax = floatAt(resp.Daily.TemperatureMax, 0)
		current.Sunrise = intAt64(resp.Daily.Sunrise, 0)
		current.Sunset = intAt64(resp.Daily.Sunset, 0)
	}

	return current
}

// floatAt returns s[i] or 0 when the parallel array is shorter than the
// time axis.
func floatAt(s []float64, i int) float64 {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

func floatAtDefault(s []float64, i int, def float64) float64 {
	if i >= len(s) || s[i] == 0 {
		return def
	}
	return s[i]
}

func intAt(s []int, i int) int {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

func intAt64(s []int64, i int) int64 {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

// Open-Meteo API response structures. Hourly and daily data arrive as
// parallel arrays keyed by the time axis.

type forecastResponse struct {
	Current struct {
		Time                int64   `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weathercode"`
		CloudCover          float64 `json:"cloud_cover"`
		PressureMSL         float64 `json:"pressure_msl"`
		SurfacePressure     float64 `json:"surface_pressure"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
		WindGusts           float64 `json:"wind_gusts_10m"`
		IsDay               int     `json:"is_day"`
	} `json:"current"`
	Hourly struct {
		Time                     []int64   `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		RelativeHumidity         []float64 `json:"relative_humidity_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Precipitation            []float64 `json:"precipitation"`
		WeatherCode              []int     `json:"weathercode"`
		CloudCover               []float64 `json:"cloud_cover"`
		Visibility               []float64 `json:"visibility"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
		WindDirection            []float64 `json:"wind_direction_10m"`
		WindGusts                []float64 `json:"wind_gusts_10m"`
		UVIndex                  []float64 `json:"uv_index"`
	} `json:"hourly"`
	Daily struct {
		Time                        []int64   `json:"time"`
		WeatherCode                 []int     `json:"weathercode"`
		TemperatureMax              []float64 `json:"temperature_2m_max"`
		TemperatureMin              []float64 `json:"temperature_2m_min"`
		Sunrise                     []int64   `json:"sunrise"`
		Sunset                      []int64   `json:"sunset"`
		PrecipitationSum            []float64 `json:"precipitation_sum"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
		WindSpeedMax                []float64 `json:"wind_speed_10m_max"`
		WindGustsMax                []float64 `json:"wind_gusts_10m_max"`
		UVIndexMax                  []float64 `json:"uv_index_max"`
	} `json:"daily"`
}
