// Package nws provides the regional hazard-alert client for the National
// Weather Service API. Alert lookup is two-step: resolve the county zone for
// a coordinate, then fetch active alerts for that zone.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast-app/skycast/internal/alerts"
	"github.com/skycast-app/skycast/internal/provider/resilience"
)

const (
	// SourceName identifies this alert source.
	SourceName = "nws"

	// DefaultBaseURL is the weather.gov API base URL.
	DefaultBaseURL = "https://api.weather.gov"
)

// ClientConfig holds configuration for the NWS client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to weather.gov).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a weather.gov alerts client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new NWS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(SourceName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return SourceName
}

// ActiveAlerts resolves the county zone for the coordinate and fetches its
// active alerts. A coordinate outside NWS coverage (no county in the point
// response) yields an empty list without error.
func (c *Client) ActiveAlerts(ctx context.Context, lat, lon float64) ([]alerts.Alert, error) {
	countyURL, err := c.lookupCounty(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if countyURL == "" {
		return []alerts.Alert{}, nil
	}

	url := countyURL + "/alerts/active"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating alerts request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing alerts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alerts request: unexpected status code: %d", resp.StatusCode)
	}

	var body alertsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding alerts response: %w", err)
	}

	normalized := make([]alerts.Alert, 0, len(body.Features))
	for _, f := range body.Features {
		normalized = append(normalized, toAlert(f.Properties))
	}
	return normalized, nil
}

// lookupCounty resolves the county zone URL for a coordinate.
func (c *Client) lookupCounty(ctx context.Context, lat, lon float64) (string, error) {
	url := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating point request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing point request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("point lookup: unexpected status code: %d", resp.StatusCode)
	}

	var body pointResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding point response: %w", err)
	}

	return body.Properties.County, nil
}

// toAlert normalizes an NWS alert feature, falling back through the optional
// property pairs the feed is known to omit.
func toAlert(p alertProperties) alerts.Alert {
	sender := p.SenderName
	if sender == "" {
		sender = "NWS"
	}

	event := p.Event
	if event == "" {
		event = "Weather Alert"
	}

	description := p.Description
	if description == "" {
		description = p.Headline
	}

	severity := strings.ToLower(p.Severity)
	if severity == "" {
		severity = "minor"
	}

	return alerts.Alert{
		SenderName:  sender,
		Event:       event,
		Start:       parseTime(p.Onset, p.Effective),
		End:         parseTime(p.Ends, p.Expires),
		Description: description,
		Tags:        []string{severity},
	}
}

// parseTime returns the Unix seconds of the first parseable timestamp.
func parseTime(candidates ...string) int64 {
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// weather.gov API response structures.

type pointResponse struct {
	Properties struct {
		County string `json:"county"`
	} `json:"properties"`
}

type alertsResponse struct {
	Features []struct {
		Properties alertProperties `json:"properties"`
	} `json:"features"`
}

type alertProperties struct {
	SenderName  string `json:"senderName"`
	Event       string `json:"event"`
	Onset       string `json:"onset"`
	Effective   string `json:"effective"`
	Ends        string `json:"ends"`
	Expires     string `json:"expires"`
	Description string `json:"description"`
	Headline    string `json:"headline"`
	Severity    string `json:"severity"`
}
