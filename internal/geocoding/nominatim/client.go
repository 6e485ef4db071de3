// Package nominatim provides the OpenStreetMap Nominatim geocoding client.
// The upstream's usage policy asks for a descriptive client identifier and
// at most one request per second, so every call passes a rate limiter.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/skycast-app/skycast/internal/geocoding"
	"github.com/skycast-app/skycast/internal/provider/resilience"
)

const (
	// ClientName identifies this geocoder.
	ClientName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies this client to the upstream, as its usage
	// policy requires.
	DefaultUserAgent = "Skycast/1.0"

	// searchLimit caps forward-search results.
	searchLimit = 5
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// UserAgent is the identifying header value (optional).
	UserAgent string

	// RequestsPerSecond throttles outbound calls (default: 1).
	RequestsPerSecond float64

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim geocoding client.
type Client struct {
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 1
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ClientName))
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// SearchCities resolves a free-text query to candidate locations. Transport
// and HTTP errors propagate to the caller; a body that is not a JSON array
// is treated as zero results.
func (c *Client) SearchCities(ctx context.Context, query string) ([]geocoding.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(searchLimit))
	q.Set("addressdetails", "1")

	body, err := c.get(ctx, c.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("non-array search response, treating as no results")
		return []geocoding.Candidate{}, nil
	}

	candidates := make([]geocoding.Candidate, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		candidates = append(candidates, geocoding.Candidate{
			Name:    resolveName(r),
			Country: r.Address.Country,
			State:   r.Address.State,
			Lat:     lat,
			Lon:     lon,
		})
	}
	return candidates, nil
}

// Reverse resolves a coordinate to a city and country. It never fails: any
// transport, HTTP, or parse error degrades to geocoding.UnknownPlace.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) geocoding.Place {
	if err := c.limiter.Wait(ctx); err != nil {
		return geocoding.UnknownPlace
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	body, err := c.get(ctx, c.baseURL+"/reverse?"+q.Encode())
	if err != nil {
		c.logger.Warn().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("reverse geocode failed, using fallback place")
		return geocoding.UnknownPlace
	}

	var result reverseResult
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Warn().Err(err).Msg("malformed reverse geocode response, using fallback place")
		return geocoding.UnknownPlace
	}

	city := firstNonEmpty(
		result.Address.City,
		result.Address.Town,
		result.Address.Village,
		result.Address.Municipality,
		result.Name,
	)
	if city == "" {
		return geocoding.UnknownPlace
	}

	return geocoding.Place{City: city, Country: result.Address.Country}
}

// get performs one rate-limited request and returns the raw body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// resolveName picks the best display name for a search result, falling back
// through the structured address fields to the display string.
func resolveName(r searchResult) string {
	if name := firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village, r.Name); name != "" {
		return name
	}
	if i := strings.IndexByte(r.DisplayName, ','); i >= 0 {
		return r.DisplayName[:i]
	}
	return r.DisplayName
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Nominatim API response structures.

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

type searchResult struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     address `json:"address"`
}

type reverseResult struct {
	Name    string  `json:"name"`
	Address address `json:"address"`
}
